package hclutil

import (
	"regexp"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name is usable as an external member name.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key or as a Go selector (e.g. geometry.Zero).
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// AsIdentifier reports whether expr is a bare reference such as `Zero` or
// `geometry.Zero`, and returns it as text.
func AsIdentifier(expr hcl.Expression) (string, bool) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return "", false
	}
	for _, step := range traversal[1:] {
		if _, ok := step.(hcl.TraverseAttr); !ok {
			return "", false
		}
	}
	return TraversalKey(traversal), true
}
