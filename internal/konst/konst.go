// Package konst extracts the binding attributes of a `const` member.
package konst

import (
	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/hclutil"
	"github.com/specialistvlad/pyslotgen/internal/model"
)

// Deprecation marks a class attribute whose access logs a warning.
type Deprecation struct {
	Note  string
	Range hcl.Range
}

// NameAttribute overrides the external name of a constant.
type NameAttribute struct {
	Value string
	Range hcl.Range
}

// ConstAttributes are the binding attributes of a constant.
type ConstAttributes struct {
	IsClassAttr bool
	Name        *NameAttribute
	Deprecation *Deprecation

	// Value is the constant's value: a literal, or a traversal naming a Go
	// identifier.
	Value hcl.Expression
}

// takenAttributes are consumed by FromAttrs; everything else stays on the
// member.
var takenAttributes = map[string]bool{
	"classattr":  true,
	"name":       true,
	"deprecated": true,
	"value":      true,
}

// FromAttrs removes the binding attributes from attrs and returns them.
func FromAttrs(attrs *[]*model.Attribute) (ConstAttributes, error) {
	var out ConstAttributes
	var kept []*model.Attribute
	var diags hcl.Diagnostics

	for _, a := range *attrs {
		if !takenAttributes[a.Name] {
			kept = append(kept, a)
			continue
		}
		switch a.Name {
		case "classattr":
			b, d := a.AsBool()
			diags = append(diags, d...)
			out.IsClassAttr = b
		case "name":
			s, d := a.AsString()
			diags = append(diags, d...)
			if !d.HasErrors() && !hclutil.IsIdentifier(s) {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid name",
					Detail:   "`name` must be a valid identifier.",
					Subject:  a.Range.Ptr(),
				})
			}
			out.Name = &NameAttribute{Value: s, Range: a.Range}
		case "deprecated":
			s, d := a.AsString()
			diags = append(diags, d...)
			out.Deprecation = &Deprecation{Note: s, Range: a.Range}
		case "value":
			out.Value = a.Expr
		}
	}
	*attrs = kept

	if err := diag.FromDiagnostics(diags); err != nil {
		return ConstAttributes{}, err
	}
	return out, nil
}

// ConstSpec is a class-attribute constant ready for code generation.
type ConstSpec struct {
	// Ident is the member's own name.
	Ident      string
	Attributes ConstAttributes
	// DefRange is where the member is declared.
	DefRange hcl.Range
}

// PythonName is the external name of the constant.
func (s *ConstSpec) PythonName() string {
	if s.Attributes.Name != nil {
		return s.Attributes.Name.Value
	}
	return s.Ident
}

// ValueCode renders the constant's value as a Go expression. A bare traversal
// names a Go identifier; anything else must be a literal.
func (s *ConstSpec) ValueCode() (jen.Code, hcl.Diagnostics) {
	if s.Attributes.Value == nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Missing constant value",
			Detail:   "Constant \"" + s.Ident + "\" has no value.",
			Subject:  s.DefRange.Ptr(),
		}}
	}
	if ident, ok := hclutil.AsIdentifier(s.Attributes.Value); ok {
		return jen.Id(ident), nil
	}
	v, diags := hclutil.GoLiteral(s.Attributes.Value)
	if diags.HasErrors() {
		return nil, diags
	}
	if i, ok := v.(int64); ok {
		return jen.Lit(int(i)), nil
	}
	return jen.Lit(v), nil
}

// Deprecations renders the statement logging the deprecation warning, or nil.
func (s *ConstSpec) Deprecations(crate string) jen.Code {
	if s.Attributes.Deprecation == nil {
		return nil
	}
	return jen.Qual(crate, "WarnDeprecated").Call(jen.Lit(s.PythonName()), jen.Lit(s.Attributes.Deprecation.Note))
}
