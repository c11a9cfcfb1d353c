// Package options parses the `pyo3 { ... }` option attributes attached to an
// implementation block or to one of its methods.
package options

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/hclutil"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"golang.org/x/mod/module"
)

// DefaultCrate is the import path of the binding library used when no
// override is given.
const DefaultCrate = "github.com/specialistvlad/pyslotgen/pyrt"

// CrateAttribute overrides the import path of the binding library.
type CrateAttribute struct {
	Path  string
	Range hcl.Range
}

// NameAttribute overrides the external name of a method.
type NameAttribute struct {
	Value string
	Range hcl.Range
}

// ImplOptions are the options of an implementation block.
type ImplOptions struct {
	Crate *CrateAttribute
}

// FunctionOptions are the options of a single method.
type FunctionOptions struct {
	Crate *CrateAttribute
	Name  *NameAttribute
}

var implOptionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "crate"}},
}

var functionOptionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "crate"}, {Name: "name"}},
}

type option struct {
	name  string
	value string
	rng   hcl.Range
}

// FromAttrs removes every option attribute from attrs and parses the
// implementation-block options they carry.
func FromAttrs(attrs *[]*model.Attribute) (ImplOptions, error) {
	var opts ImplOptions
	taken, err := takeOptions(attrs, implOptionSchema)
	if err != nil {
		return opts, err
	}
	for _, o := range taken {
		switch o.name {
		case "crate":
			if err := setCrate(&opts.Crate, o); err != nil {
				return opts, err
			}
		}
	}
	return opts, nil
}

// FunctionOptionsFromAttrs removes every option attribute from attrs and
// parses the method options they carry.
func FunctionOptionsFromAttrs(attrs *[]*model.Attribute) (FunctionOptions, error) {
	var opts FunctionOptions
	taken, err := takeOptions(attrs, functionOptionSchema)
	if err != nil {
		return opts, err
	}
	for _, o := range taken {
		switch o.name {
		case "crate":
			if err := setCrate(&opts.Crate, o); err != nil {
				return opts, err
			}
		case "name":
			if opts.Name != nil {
				return opts, diag.Spanned(o.rng, "Duplicate option", "`name` may only be specified once.")
			}
			if !hclutil.IsIdentifier(o.value) {
				return opts, diag.Spanned(o.rng, "Invalid name", "`name` must be a valid identifier.")
			}
			opts.Name = &NameAttribute{Value: o.value, Range: o.rng}
		}
	}
	return opts, nil
}

// MergeCrate applies the block-level override when the method has none.
func (o *FunctionOptions) MergeCrate(block *CrateAttribute) {
	if o.Crate == nil {
		o.Crate = block
	}
}

// CratePath returns the import path selected by c.
func CratePath(c *CrateAttribute) string {
	if c == nil {
		return DefaultCrate
	}
	return c.Path
}

func setCrate(dst **CrateAttribute, o option) error {
	if *dst != nil {
		return diag.Spanned(o.rng, "Duplicate option", "`crate` may only be specified once.")
	}
	if err := module.CheckImportPath(o.value); err != nil {
		return diag.Spanned(o.rng, "Invalid crate path", err.Error())
	}
	*dst = &CrateAttribute{Path: o.value, Range: o.rng}
	return nil
}

// takeOptions strips option attributes from attrs and returns the options
// they hold in source order.
func takeOptions(attrs *[]*model.Attribute, schema *hcl.BodySchema) ([]option, error) {
	var kept []*model.Attribute
	var taken []option
	var diags hcl.Diagnostics

	for _, a := range *attrs {
		if a.Name != model.AttrOptions {
			kept = append(kept, a)
			continue
		}
		if !a.IsBlock() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid options",
				Detail:   "Options must be written as a `" + model.AttrOptions + " { ... }` block.",
				Subject:  a.Range.Ptr(),
			})
			continue
		}
		content, contentDiags := a.Body.Content(schema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}
		for _, attr := range hclutil.AttributesInOrder(content.Attributes) {
			var value string
			valueDiags := gohcl.DecodeExpression(attr.Expr, nil, &value)
			diags = append(diags, valueDiags...)
			if valueDiags.HasErrors() {
				continue
			}
			taken = append(taken, option{name: attr.Name, value: value, rng: attr.Range})
		}
	}

	*attrs = kept
	if err := diag.FromDiagnostics(diags); err != nil {
		return nil, err
	}
	return taken, nil
}
