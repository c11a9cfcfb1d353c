package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// ErrGenerationFailed is returned by Run when a manifest produced error
// diagnostics or, in check mode, when generated files are out of date.
var ErrGenerationFailed = errors.New("generation failed")

// Report summarizes one run.
type Report struct {
	Manifests int
	Written   []string
	Unchanged []string
	Removed   []string
	// Stale lists files that differ from what would be generated. It is
	// only filled in check mode.
	Stale       []string
	Diagnostics hcl.Diagnostics
	Files       map[string]*hcl.File
}

// Errors returns the number of error diagnostics.
func (r *Report) Errors() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == hcl.DiagError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning diagnostics.
func (r *Report) Warnings() int {
	return len(r.Diagnostics) - r.Errors()
}

// Run expands every configured manifest and writes the generated files.
// Manifests are processed concurrently, but results are merged in input
// order so output and diagnostics are deterministic.
func (a *App) Run(ctx context.Context) (*Report, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	paths, err := a.findManifests(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*manifestResult, len(paths))
	if err := a.parallel(ctx, len(paths), func(ctx context.Context, i int) error {
		results[i] = a.expandManifest(ctx, paths[i])
		return nil
	}); err != nil {
		return nil, err
	}
	checkCollisions(ctx, results, a.settings.Strategy)

	outcomes := make([]writeOutcome, len(results))
	if err := a.parallel(ctx, len(results), func(ctx context.Context, i int) error {
		out, err := a.emitManifest(ctx, results[i])
		outcomes[i] = out
		return err
	}); err != nil {
		return nil, err
	}

	report := &Report{Manifests: len(results), Files: make(map[string]*hcl.File)}
	for i, res := range results {
		report.Diagnostics = append(report.Diagnostics, res.diags...)
		report.Diagnostics = append(report.Diagnostics, outcomes[i].diags...)
		for name, f := range res.files {
			report.Files[name] = f
		}
		report.Written = append(report.Written, outcomes[i].written...)
		report.Unchanged = append(report.Unchanged, outcomes[i].unchanged...)
		report.Removed = append(report.Removed, outcomes[i].removed...)
		report.Stale = append(report.Stale, outcomes[i].stale...)
	}

	if len(report.Diagnostics) > 0 {
		wr := hcl.NewDiagnosticTextWriter(a.outW, report.Files, 0, false)
		if err := wr.WriteDiagnostics(report.Diagnostics); err != nil {
			return report, fmt.Errorf("failed to print diagnostics: %w", err)
		}
	}

	logger.Info("Generation finished.",
		"manifests", report.Manifests,
		"written", len(report.Written),
		"unchanged", len(report.Unchanged),
		"errors", report.Errors(),
		"warnings", report.Warnings())

	switch {
	case report.Errors() > 0:
		return report, fmt.Errorf("%w: %d error(s)", ErrGenerationFailed, report.Errors())
	case len(report.Stale) > 0:
		return report, fmt.Errorf("%w: %d generated file(s) out of date", ErrGenerationFailed, len(report.Stale))
	}
	return report, nil
}

// parallel runs fn for every index with at most Jobs calls in flight. A
// panic inside fn is carried back to the calling goroutine and raised again
// there once all calls have returned, the first by index.
func (a *App) parallel(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	panics := make([]any, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Jobs)
	for i := 0; i < n; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					panics[i] = r
				}
			}()
			return fn(gctx, i)
		})
	}
	err := g.Wait()
	for _, r := range panics {
		if r != nil {
			panic(r)
		}
	}
	return err
}

// writeOutcome is what emitManifest did for one manifest.
type writeOutcome struct {
	written, unchanged, removed, stale []string
	diags                              hcl.Diagnostics
}

// emitManifest renders one manifest and brings the files on disk in line
// with it. In check mode nothing is written; differences are recorded as
// stale instead.
func (a *App) emitManifest(ctx context.Context, res *manifestResult) (writeOutcome, error) {
	logger := ctxlog.FromContext(ctx)
	var out writeOutcome

	files, err := renderManifest(res, a.config.Suffix)
	if err != nil {
		out.diags = append(out.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to render generated code",
			Detail:   err.Error(),
		})
		return out, nil
	}
	if res.manifest == nil {
		return out, nil
	}

	keep := make(map[string]bool, len(files))
	for _, f := range files {
		keep[f.Path] = true
		current, err := os.ReadFile(f.Path)
		if err == nil && bytes.Equal(current, f.Content) {
			out.unchanged = append(out.unchanged, f.Path)
			continue
		}
		if a.config.CheckOnly {
			out.stale = append(out.stale, f.Path)
			continue
		}
		if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			return out, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		logger.Debug("Generated file written.", "path", f.Path, "gate", f.Gate)
		out.written = append(out.written, f.Path)
	}

	// A manifest with errors keeps its old files until it is fixed.
	if res.diags.HasErrors() {
		return out, nil
	}
	leftovers, err := a.leftoverFiles(res, keep)
	if err != nil {
		return out, err
	}
	for _, path := range leftovers {
		if a.config.CheckOnly {
			out.stale = append(out.stale, path)
			continue
		}
		if err := os.Remove(path); err != nil {
			return out, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		logger.Debug("Stale generated file removed.", "path", path)
		out.removed = append(out.removed, path)
	}
	return out, nil
}

// leftoverFiles finds files generated from res by an earlier run that the
// current run no longer produces, such as the file of a removed gate. Only
// files carrying the generated header are considered.
func (a *App) leftoverFiles(res *manifestResult, keep map[string]bool) ([]string, error) {
	fsInfo := res.manifest.FSInformation
	base := filepath.Join(fsInfo.Dir(), fsInfo.Stem()+a.config.Suffix)
	candidates, err := filepath.Glob(base + ".*.go")
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, base+".go")

	var leftovers []string
	for _, path := range candidates {
		if keep[path] {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if bytes.HasPrefix(content, []byte(generatedMarker)) {
			leftovers = append(leftovers, path)
		}
	}
	slices.Sort(leftovers)
	return leftovers, nil
}
