package options

import (
	"testing"

	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseImpl(t *testing.T, src string) *model.ImplBlock {
	t.Helper()
	manifest := testutil.ParseManifest(t, "test.pyslots.hcl", src)
	require.Len(t, manifest.Impls, 1)
	return manifest.Impls[0]
}

func TestFromAttrs(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		expectErr   bool
		errLine     int
		wantCrate   string
		wantRemains int
	}{
		{
			name:        "no options",
			body:        `doc = "x"`,
			wantRemains: 1,
		},
		{
			name:        "crate override",
			body:        "doc = \"x\"\n  pyo3 {\n    crate = \"example.com/fork/pyrt\"\n  }",
			wantCrate:   "example.com/fork/pyrt",
			wantRemains: 1,
		},
		{
			name:      "error - duplicate crate with different values",
			body:      "pyo3 {\n    crate = \"example.com/a\"\n  }\n  pyo3 {\n    crate = \"example.com/b\"\n  }",
			expectErr: true,
			errLine:   7,
		},
		{
			name:      "error - duplicate crate with equal values",
			body:      "pyo3 {\n    crate = \"example.com/a\"\n  }\n  pyo3 {\n    crate = \"example.com/a\"\n  }",
			expectErr: true,
			errLine:   7,
		},
		{
			name:      "error - unknown option",
			body:      "pyo3 {\n    frozen = true\n  }",
			expectErr: true,
			errLine:   4,
		},
		{
			name:      "error - wrong value type",
			body:      "pyo3 {\n    crate = [\"a\"]\n  }",
			expectErr: true,
			errLine:   4,
		},
		{
			name:      "error - invalid import path",
			body:      "pyo3 {\n    crate = \"not a path\"\n  }",
			expectErr: true,
			errLine:   4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			impl := parseImpl(t, "package = \"geometry\"\nimpl \"*Vector\" {\n  "+tc.body+"\n}\n")
			attrs := impl.Attrs

			// --- Act ---
			opts, err := FromAttrs(&attrs)

			// --- Assert ---
			if tc.expectErr {
				var uce *diag.UserConfigError
				require.ErrorAs(t, err, &uce)
				require.NotEmpty(t, uce.Diags)
				require.NotNil(t, uce.Diags[0].Subject)
				assert.Equal(t, tc.errLine, uce.Diags[0].Subject.Start.Line)
				return
			}
			require.NoError(t, err)
			assert.Len(t, attrs, tc.wantRemains, "option attributes are removed from the list")
			assert.Nil(t, model.Find(attrs, model.AttrOptions))
			assert.Equal(t, tc.wantCrate, func() string {
				if opts.Crate == nil {
					return ""
				}
				return opts.Crate.Path
			}())
		})
	}
}

func TestFunctionOptions(t *testing.T) {
	impl := parseImpl(t, `package = "geometry"
impl "*Vector" {
  method "norm" {
    pyo3 {
      name = "length"
    }
  }
  method "dup" {
    pyo3 {
      name = "a"
    }
    pyo3 {
      name = "b"
    }
  }
}
`)
	norm := impl.Items[0].(*model.Method)
	opts, err := FunctionOptionsFromAttrs(&norm.Attrs)
	require.NoError(t, err)
	require.NotNil(t, opts.Name)
	assert.Equal(t, "length", opts.Name.Value)
	assert.Empty(t, norm.Attrs)

	dup := impl.Items[1].(*model.Method)
	_, err = FunctionOptionsFromAttrs(&dup.Attrs)
	var uce *diag.UserConfigError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, 13, uce.Diags[0].Subject.Start.Line)
}

func TestMergeCrate(t *testing.T) {
	block := &CrateAttribute{Path: "example.com/block"}
	item := &CrateAttribute{Path: "example.com/item"}

	opts := FunctionOptions{}
	opts.MergeCrate(block)
	assert.Equal(t, "example.com/block", CratePath(opts.Crate))

	opts = FunctionOptions{Crate: item}
	opts.MergeCrate(block)
	assert.Equal(t, "example.com/item", CratePath(opts.Crate), "the item-level override wins")

	assert.Equal(t, DefaultCrate, CratePath(nil))
}
