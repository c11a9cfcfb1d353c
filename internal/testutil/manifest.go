// Package testutil holds helpers shared by the generator's package tests:
// parsing manifest snippets and building member blocks.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/stretchr/testify/require"
)

// ParseManifest parses src as the manifest file name. Any error diagnostic
// fails the test.
func ParseManifest(t *testing.T, name, src string) *model.Manifest {
	t.Helper()

	file, diags := hclparse.NewParser().ParseHCL([]byte(src), name)
	require.False(t, diags.HasErrors(), diags.Error())
	manifest, diags := model.ParseManifestFile(context.Background(), file, name)
	require.False(t, diags.HasErrors(), diags.Error())
	return manifest
}

// ParseImpl wraps body into a manifest holding a single impl block for
// label and returns that block. The first line of body is line 3 of the
// manifest.
func ParseImpl(t *testing.T, label, body string) *model.ImplBlock {
	t.Helper()

	src := "package = \"geometry\"\nimpl \"" + label + "\" {\n" + body + "\n}\n"
	manifest := ParseManifest(t, "vector.pyslots.hcl", src)
	require.Len(t, manifest.Impls, 1, "expected exactly one impl block")
	return manifest.Impls[0]
}

// ParseMember parses a single member block, such as `method "__add__"`, of
// an impl block for *Vector. The first line of body is line 4.
func ParseMember(t *testing.T, kind, label, body string) model.Item {
	t.Helper()

	block := ParseImpl(t, "*Vector", fmt.Sprintf("  %s %q {\n%s\n  }", kind, label, body))
	require.Len(t, block.Items, 1, "expected exactly one member")
	return block.Items[0]
}

// Methods renders one empty method block per name.
func Methods(names ...string) string {
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "  method %q {}\n", n)
	}
	return b.String()
}

// Unindent removes common leading whitespace from a multi-line string,
// allowing for readable, indented HCL snippets in Go tests.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.Join(lines, "\n")
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimSpace(line)
		}
	}
	return strings.Join(lines, "\n")
}
