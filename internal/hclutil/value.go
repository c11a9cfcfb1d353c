package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// GoLiteral converts a constant HCL expression into the Go value it should be
// rendered as: int64 for whole numbers, float64 for other numbers, string or
// bool. Collections and unknown values are rejected.
func GoLiteral(expr hcl.Expression) (any, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	lit, err := literalOf(val)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported constant value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return lit, nil
}

func literalOf(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("the value must be known and not null")
	}
	switch val.Type() {
	case cty.String:
		var s string
		err := gocty.FromCtyValue(val, &s)
		return s, err
	case cty.Bool:
		var b bool
		err := gocty.FromCtyValue(val, &b)
		return b, err
	case cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			var i int64
			if err := gocty.FromCtyValue(val, &i); err != nil {
				return nil, err
			}
			return i, nil
		}
		var f float64
		err := gocty.FromCtyValue(val, &f)
		return f, err
	default:
		return nil, fmt.Errorf("a %s cannot be used as a constant; use a string, number or bool", val.Type().FriendlyName())
	}
}
