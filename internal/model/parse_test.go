// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) (*Manifest, bool) {
	t.Helper()
	file, diags := hclparse.NewParser().ParseHCL([]byte(src), "shapes.pyslots.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	manifest, diags := ParseManifestFile(context.Background(), file, "testdata/shapes.pyslots.hcl")
	return manifest, diags.HasErrors()
}

func TestParseManifestFile_ImplBlock(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
package = "geometry"

impl "*Vector" {
  doc = "vector bindings"
  pyo3 {
    crate = "example.com/pyrt"
  }

  method "__add__" {
    func = "Add"
    cfg  = "linux"
  }

  const "ZERO" {
    value     = 5
    classattr = true
  }

  item "type" "Inner" {}
}
`

	// --- Act ---
	manifest, hasErrors := parseSource(t, src)

	// --- Assert ---
	require.False(t, hasErrors)
	assert.Equal(t, "geometry", manifest.Package)
	assert.Equal(t, "shapes", manifest.FSInformation.Stem())
	require.Len(t, manifest.Impls, 1)

	impl := manifest.Impls[0]
	assert.Equal(t, "*Vector", impl.SelfType)
	assert.Equal(t, "Vector", impl.TypeName())
	assert.True(t, impl.IsPointer())
	assert.False(t, impl.HasTypeParams())
	require.Len(t, impl.Attrs, 2)
	assert.Equal(t, AttrDoc, impl.Attrs[0].Name)
	assert.Equal(t, AttrOptions, impl.Attrs[1].Name)
	assert.True(t, impl.Attrs[1].IsBlock())

	require.Len(t, impl.Items, 3)
	method, ok := impl.Items[0].(*Method)
	require.True(t, ok)
	assert.Equal(t, "__add__", method.Name)
	gates, diags := CfgGates(method.Attrs)
	require.False(t, diags.HasErrors())
	assert.Equal(t, []string{"linux"}, gates)

	konst, ok := impl.Items[1].(*Const)
	require.True(t, ok)
	assert.Equal(t, "ZERO", konst.ItemName())

	other, ok := impl.Items[2].(*Other)
	require.True(t, ok)
	assert.Equal(t, "type", other.Kind)
	assert.Equal(t, "Inner", other.Name)
}

func TestParseManifestFile_BrokenBlockKeepsSiblings(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
package = "geometry"

impl "*Broken" {
  method "__add__" {
    func = ["not", "a", "string"]
  }
}

impl "*Vector" {
  method "norm" {}
}
`

	// --- Act ---
	manifest, hasErrors := parseSource(t, src)

	// --- Assert ---
	require.True(t, hasErrors)
	require.NotNil(t, manifest)
	require.Len(t, manifest.Impls, 1)
	assert.Equal(t, "*Vector", manifest.Impls[0].SelfType)
}

func TestParseManifestFile_Shape(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		label        string
		body         string
		wantTrait    bool
		wantGenerics bool
	}{
		{name: "plain", label: "*Vector"},
		{name: "generic label", label: "*Vector[T]", wantGenerics: true},
		{name: "type params attribute", label: "*Vector", body: `type_params = ["T"]`, wantGenerics: true},
		{name: "trait", label: "*Vector", body: `implements = "fmt.Stringer"`, wantTrait: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			src := "package = \"geometry\"\nimpl \"" + tc.label + "\" {\n  " + tc.body + "\n}\n"

			// --- Act ---
			manifest, hasErrors := parseSource(t, src)

			// --- Assert ---
			require.False(t, hasErrors)
			require.Len(t, manifest.Impls, 1)
			impl := manifest.Impls[0]
			assert.Equal(t, tc.wantTrait, impl.Trait != nil)
			assert.Equal(t, tc.wantGenerics, impl.HasTypeParams())
		})
	}
}

func TestParseManifestFile_Class(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		body         string
		expectErr    bool
		wantVariants []Variant
		wantDefaults ClassDefaults
	}{
		{
			name:         "all defaults",
			body:         `variants = { Red = "ColorRed", "Green" = "ColorGreen" }`,
			wantVariants: []Variant{{Name: "Red", Ident: "ColorRed"}, {Name: "Green", Ident: "ColorGreen"}},
			wantDefaults: AllClassDefaults(),
		},
		{
			name:         "selected defaults",
			body:         "variants = { Red = \"ColorRed\" }\n  defaults {\n    repr = true\n  }",
			wantVariants: []Variant{{Name: "Red", Ident: "ColorRed"}},
			wantDefaults: ClassDefaults{Repr: true},
		},
		{
			name:      "error - empty variants",
			body:      `variants = {}`,
			expectErr: true,
		},
		{
			name:      "error - duplicate defaults block",
			body:      "variants = { Red = \"ColorRed\" }\n  defaults {}\n  defaults {}",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			src := "package = \"paint\"\nclass \"Color\" {\n  " + tc.body + "\n}\n"

			// --- Act ---
			manifest, hasErrors := parseSource(t, src)

			// --- Assert ---
			if tc.expectErr {
				require.True(t, hasErrors)
				assert.Empty(t, manifest.Classes)
				return
			}
			require.False(t, hasErrors)
			require.Len(t, manifest.Classes, 1)
			class := manifest.Classes[0]
			assert.Equal(t, "Color", class.Name)
			assert.Equal(t, tc.wantDefaults, class.Defaults)
			require.Len(t, class.Variants, len(tc.wantVariants))
			for i, want := range tc.wantVariants {
				assert.Equal(t, want.Name, class.Variants[i].Name)
				assert.Equal(t, want.Ident, class.Variants[i].Ident)
			}
		})
	}
}

func TestAttributeHelpers(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `
package = "geometry"

impl "*Vector" {
  const "lower" {
    value = 1
    cfg   = "linux"
    allow = "non_upper_case_globals"
  }
}
`
	manifest, hasErrors := parseSource(t, src)
	require.False(t, hasErrors)
	attrs := manifest.Impls[0].Items[0].(*Const).Attrs

	// --- Act & Assert ---
	assert.True(t, Allows(attrs, "non_upper_case_globals"))
	assert.False(t, Allows(attrs, "dead_code"))
	gates, diags := CfgGates(attrs)
	require.False(t, diags.HasErrors())
	assert.Equal(t, []string{"linux"}, gates)
	require.NotNil(t, Find(attrs, "value"))
	assert.Nil(t, Find(attrs, "name"))

	synthetic := NewAllowAttribute("dead_code", attrs[0].Range)
	assert.True(t, Allows(append(attrs, synthetic), "dead_code"))
}
