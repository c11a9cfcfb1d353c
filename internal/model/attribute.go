// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"fmt"
	"go/build/constraint"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Well-known attribute names.
const (
	AttrOptions = "pyo3"
	AttrCfg     = "cfg"
	AttrAllow   = "allow"
	AttrDoc     = "doc"
)

// Attribute is one annotation. Exactly one of Expr and Body is set.
type Attribute struct {
	Name  string
	Expr  hcl.Expression
	Body  hcl.Body
	Range hcl.Range
}

// IsBlock reports whether the attribute was written in block form.
func (a *Attribute) IsBlock() bool {
	return a.Body != nil
}

// AsString decodes the attribute's expression as a string.
func (a *Attribute) AsString() (string, hcl.Diagnostics) {
	var s string
	if a.Expr == nil {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Expected an attribute",
			Detail:   "\"" + a.Name + "\" must be written as `" + a.Name + " = ...`.",
			Subject:  a.Range.Ptr(),
		}}
	}
	diags := gohcl.DecodeExpression(a.Expr, nil, &s)
	return s, diags
}

// AsBool decodes the attribute's expression as a bool.
func (a *Attribute) AsBool() (bool, hcl.Diagnostics) {
	var b bool
	if a.Expr == nil {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Expected an attribute",
			Detail:   "\"" + a.Name + "\" must be written as `" + a.Name + " = ...`.",
			Subject:  a.Range.Ptr(),
		}}
	}
	diags := gohcl.DecodeExpression(a.Expr, nil, &b)
	return b, diags
}

// NewStringAttribute builds a synthetic `name = "<value>"` attribute anchored
// at rng.
func NewStringAttribute(name, value string, rng hcl.Range) *Attribute {
	return &Attribute{
		Name:  name,
		Expr:  &hclsyntax.LiteralValueExpr{Val: cty.StringVal(value), SrcRange: rng},
		Range: rng,
	}
}

// NewAllowAttribute builds a synthetic `allow = "<lint>"` attribute.
func NewAllowAttribute(lint string, rng hcl.Range) *Attribute {
	return NewStringAttribute(AttrAllow, lint, rng)
}

// Find returns the first attribute with the given name.
func Find(attrs []*Attribute, name string) *Attribute {
	for _, a := range attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Allows reports whether attrs carry an `allow` attribute for lint.
func Allows(attrs []*Attribute, lint string) bool {
	for _, a := range attrs {
		if a.Name != AttrAllow {
			continue
		}
		if s, diags := a.AsString(); !diags.HasErrors() && s == lint {
			return true
		}
	}
	return false
}

// CfgGates returns the conditional-compilation gates of attrs, in order.
// Every gate must be a string holding a valid Go build constraint
// expression.
func CfgGates(attrs []*Attribute) ([]string, hcl.Diagnostics) {
	var gates []string
	var diags hcl.Diagnostics
	for _, a := range attrs {
		if a.Name != AttrCfg {
			continue
		}
		s, d := a.AsString()
		if d.HasErrors() {
			diags = append(diags, d...)
			continue
		}
		if _, err := constraint.Parse("//go:build " + s); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid cfg",
				Detail:   fmt.Sprintf("%q is not a valid build constraint: %v.", s, err),
				Subject:  a.Range.Ptr(),
			})
			continue
		}
		gates = append(gates, s)
	}
	return gates, diags
}
