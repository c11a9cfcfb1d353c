// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns a parsed HCL file into a Manifest.
//
// Why keep going after a broken block?
//
// Each impl block is expanded independently, so a mistake in one block must
// not hide the diagnostics, or the generated code, of its siblings. Parsing
// skips the broken block, records its diagnostics, and continues.
package model

import (
	"context"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/hclutil"
)

var manifestSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "package", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "impl", LabelNames: []string{"type"}},
		{Type: "class", LabelNames: []string{"name"}},
	},
}

var implBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "implements"},
		{Name: "type_params"},
		{Name: AttrDoc},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: AttrOptions},
		{Type: "method", LabelNames: []string{"name"}},
		{Type: "const", LabelNames: []string{"name"}},
		{Type: "item", LabelNames: []string{"kind", "name"}},
	},
}

var methodBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "func"},
		{Name: "kind"},
		{Name: AttrCfg},
		{Name: AttrAllow},
		{Name: AttrDoc},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: AttrOptions},
	},
}

var constBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "value", Required: true},
		{Name: "classattr"},
		{Name: "name"},
		{Name: "deprecated"},
		{Name: AttrCfg},
		{Name: AttrAllow},
		{Name: AttrDoc},
	},
}

var classBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "variants", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "defaults"},
	},
}

// stringAttributes must decode as strings wherever they appear.
var stringAttributes = map[string]bool{
	"func": true, "kind": true, AttrCfg: true, AttrAllow: true, AttrDoc: true, "name": true, "deprecated": true,
}

// ParseManifestFile decodes an HCL file into a Manifest. Blocks with errors
// are left out of the result; their diagnostics are returned together with
// the blocks that parsed cleanly.
func ParseManifestFile(ctx context.Context, hclFile *hcl.File, filePath string) (*Manifest, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing manifest file.", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		allDiags = append(allDiags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		})
		return nil, allDiags
	}

	content, diags := hclFile.Body.Content(manifestSchema)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	manifest := &Manifest{FSInformation: NewFSInfo(filePath)}
	if attr, ok := content.Attributes["package"]; ok {
		pkgDiags := gohcl.DecodeExpression(attr.Expr, nil, &manifest.Package)
		allDiags = append(allDiags, pkgDiags...)
		if pkgDiags.HasErrors() {
			return nil, allDiags
		}
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "impl":
			impl, implDiags := parseImplBlock(block)
			allDiags = append(allDiags, implDiags...)
			if implDiags.HasErrors() {
				continue
			}
			impl.FSInformation = manifest.FSInformation
			manifest.Impls = append(manifest.Impls, impl)
		case "class":
			class, classDiags := parseClassBlock(block)
			allDiags = append(allDiags, classDiags...)
			if classDiags.HasErrors() {
				continue
			}
			class.FSInformation = manifest.FSInformation
			manifest.Classes = append(manifest.Classes, class)
		}
	}

	logger.Debug("Parsed manifest file.", "file_path", filePath, "impls", len(manifest.Impls), "classes", len(manifest.Classes))
	return manifest, allDiags
}

func parseImplBlock(block *hcl.Block) (*ImplBlock, hcl.Diagnostics) {
	content, diags := block.Body.Content(implBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	impl := &ImplBlock{
		SelfType:  block.Labels[0],
		TypeRange: block.LabelRanges[0],
		DefRange:  block.DefRange,
	}

	if attr, ok := content.Attributes["implements"]; ok {
		impl.Trait = &Attribute{Name: attr.Name, Expr: attr.Expr, Range: attr.Range}
		delete(content.Attributes, "implements")
	}
	if attr, ok := content.Attributes["type_params"]; ok {
		impl.TypeParams = &Attribute{Name: attr.Name, Expr: attr.Expr, Range: attr.Range}
		delete(content.Attributes, "type_params")
	}

	var attrDiags hcl.Diagnostics
	impl.Attrs, attrDiags = collectAttributes(content)
	diags = append(diags, attrDiags...)

	for _, child := range content.Blocks {
		switch child.Type {
		case "method":
			m, mDiags := parseMethod(child)
			diags = append(diags, mDiags...)
			if m != nil {
				impl.Items = append(impl.Items, m)
			}
		case "const":
			c, cDiags := parseConst(child)
			diags = append(diags, cDiags...)
			if c != nil {
				impl.Items = append(impl.Items, c)
			}
		case "item":
			impl.Items = append(impl.Items, &Other{
				Kind:     child.Labels[0],
				Name:     child.Labels[1],
				Body:     child.Body,
				DefRange: child.DefRange,
			})
		}
	}
	return impl, diags
}

func parseMethod(block *hcl.Block) (*Method, hcl.Diagnostics) {
	content, diags := block.Body.Content(methodBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, attrDiags := collectAttributes(content)
	diags = append(diags, attrDiags...)
	return &Method{
		Name:      block.Labels[0],
		Attrs:     attrs,
		NameRange: block.LabelRanges[0],
		DefRange:  block.DefRange,
	}, diags
}

func parseConst(block *hcl.Block) (*Const, hcl.Diagnostics) {
	content, diags := block.Body.Content(constBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, attrDiags := collectAttributes(content)
	diags = append(diags, attrDiags...)
	if attr, ok := content.Attributes["classattr"]; ok {
		var b bool
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &b)...)
	}
	return &Const{
		Name:      block.Labels[0],
		Attrs:     attrs,
		NameRange: block.LabelRanges[0],
		DefRange:  block.DefRange,
	}, diags
}

func parseClassBlock(block *hcl.Block) (*ClassDef, hcl.Diagnostics) {
	content, diags := block.Body.Content(classBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	class := &ClassDef{
		Name:     block.Labels[0],
		Defaults: AllClassDefaults(),
		DefRange: block.DefRange,
	}

	pairs, mapDiags := hcl.ExprMap(content.Attributes["variants"].Expr)
	diags = append(diags, mapDiags...)
	for _, pair := range pairs {
		var v Variant
		diags = append(diags, decodeMapKey(pair.Key, &v.Name)...)
		diags = append(diags, gohcl.DecodeExpression(pair.Value, nil, &v.Ident)...)
		v.Range = hcl.RangeBetween(pair.Key.Range(), pair.Value.Range())
		class.Variants = append(class.Variants, v)
	}
	if len(pairs) == 0 && !mapDiags.HasErrors() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Empty variant map",
			Detail:   "A class needs at least one variant.",
			Subject:  content.Attributes["variants"].Range.Ptr(),
		})
	}

	defaultsBlock, uniqueDiags := hclutil.FindUniqueBlock(content.Blocks, "defaults")
	diags = append(diags, uniqueDiags...)
	if defaultsBlock != nil {
		class.Defaults = ClassDefaults{}
		diags = append(diags, gohcl.DecodeBody(defaultsBlock.Body, nil, &class.Defaults)...)
	}
	return class, diags
}

// decodeMapKey accepts both bare (`Red = ...`) and quoted (`"Red" = ...`) keys.
func decodeMapKey(expr hcl.Expression, out *string) hcl.Diagnostics {
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		*out = kw
		return nil
	}
	return gohcl.DecodeExpression(expr, nil, out)
}

// collectAttributes turns the attributes and option blocks of a body into an
// attribute list in source order.
func collectAttributes(content *hcl.BodyContent) ([]*Attribute, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var attrs []*Attribute
	for _, a := range hclutil.AttributesInOrder(content.Attributes) {
		if stringAttributes[a.Name] {
			var s string
			diags = append(diags, gohcl.DecodeExpression(a.Expr, nil, &s)...)
		}
		attrs = append(attrs, &Attribute{Name: a.Name, Expr: a.Expr, Range: a.Range})
	}
	for _, b := range content.Blocks {
		if b.Type == AttrOptions {
			attrs = append(attrs, &Attribute{Name: b.Type, Body: b.Body, Range: b.DefRange})
		}
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Range.Start.Byte < attrs[j].Range.Start.Byte
	})
	return attrs, diags
}
