package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/pyclass"
	"github.com/specialistvlad/pyslotgen/internal/pyimpl"
)

// blockResult is the expansion of one implementation block. Exp is nil when
// the block was aborted.
type blockResult struct {
	block *model.ImplBlock
	exp   *pyimpl.Expansion
}

// classResult is the default-slot code of one class block.
type classResult struct {
	class *model.ClassDef
	crate string
	decls []jen.Code
}

// manifestResult is everything generated from one manifest file.
type manifestResult struct {
	path     string
	manifest *model.Manifest
	files    map[string]*hcl.File
	diags    hcl.Diagnostics
	blocks   []*blockResult
	classes  []*classResult
}

// expandManifest parses path and expands every block in it. A block that
// fails leaves its siblings untouched.
func (a *App) expandManifest(ctx context.Context, path string) *manifestResult {
	ctx = ctxlog.With(ctx, "manifest", path)
	logger := ctxlog.FromContext(ctx)

	res := &manifestResult{path: path}
	res.manifest, res.files, res.diags = loadManifest(ctx, path)
	if res.manifest == nil {
		logger.Debug("Manifest could not be parsed.")
		return res
	}

	for _, block := range res.manifest.Impls {
		exp, err := pyimpl.Build(ctx, block, a.settings, a.classifier)
		if err != nil {
			res.diags = append(res.diags, blockDiagnostics(block.DefRange, err)...)
			res.blocks = append(res.blocks, &blockResult{block: block})
			logger.Debug("Implementation block aborted.", "type", block.SelfType)
			continue
		}
		res.diags = append(res.diags, exp.Warnings...)
		res.blocks = append(res.blocks, &blockResult{block: block, exp: exp})
	}

	crate := a.settings.CratePath()
	for _, class := range res.manifest.Classes {
		res.classes = append(res.classes, &classResult{
			class: class,
			crate: crate,
			decls: pyclass.Expand(ctx, class, crate, a.classifier),
		})
	}

	logger.Debug("Manifest expanded.", "blocks", len(res.blocks), "classes", len(res.classes))
	return res
}

// blockDiagnostics turns the error of an aborted block into diagnostics.
func blockDiagnostics(rng hcl.Range, err error) hcl.Diagnostics {
	var userErr *diag.UserConfigError
	if errors.As(err, &userErr) {
		return userErr.Diags
	}
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Failed to expand implementation block",
		Detail:   err.Error(),
		Subject:  rng.Ptr(),
	}}
}

// typeKey identifies a Go type within a package directory.
type typeKey struct {
	dir  string
	name string
}

// checkCollisions aborts blocks whose generated declarations clash with an
// earlier block of the same type in the same package. Under the direct
// strategy every block declares the provider methods, so a type can have
// only one block per package. Results are visited in input order, so the
// first block always wins.
func checkCollisions(ctx context.Context, results []*manifestResult, strategy pyimpl.RegistrationStrategy) {
	logger := ctxlog.FromContext(ctx)
	declared := make(map[typeKey]map[string]hcl.Range)
	firstBlock := make(map[typeKey]hcl.Range)

	for _, res := range results {
		for _, br := range res.blocks {
			if br.exp == nil {
				continue
			}
			key := typeKey{dir: res.manifest.FSInformation.Dir(), name: br.exp.SelfType.Name}

			if strategy == pyimpl.DirectOverride {
				if prev, ok := firstBlock[key]; ok {
					res.diags = append(res.diags, diag.Spanned(br.block.TypeRange, "Duplicate implementation block",
						fmt.Sprintf("Type %s already has an implementation block at %s. The direct strategy allows one block per type and package; merge the blocks or select the \"registry\" strategy.", key.name, prev)).Diags...)
					logger.Debug("Implementation block rejected.", "type", key.name, "reason", "duplicate block")
					br.exp = nil
					continue
				}
				firstBlock[key] = br.block.TypeRange
			}

			names := declared[key]
			if names == nil {
				names = make(map[string]hcl.Range)
				declared[key] = names
			}
			var clash hcl.Diagnostics
			for _, d := range br.exp.Declared {
				if prev, ok := names[d.Name]; ok {
					rng := d.Range
					if rng.Filename == "" {
						rng = br.block.TypeRange
					}
					clash = append(clash, diag.Spanned(rng, "Duplicate generated method",
						fmt.Sprintf("Method %s.%s is already generated for the block at %s.", key.name, d.Name, prev)).Diags...)
				}
			}
			if clash.HasErrors() {
				res.diags = append(res.diags, clash...)
				logger.Debug("Implementation block rejected.", "type", key.name, "reason", "duplicate method")
				br.exp = nil
				continue
			}
			for _, d := range br.exp.Declared {
				names[d.Name] = br.block.TypeRange
			}
		}
	}
}
