package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/options"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vectorManifest = `
package = "geometry"

impl "*Vector" {
  method "__add__" {
    func = "Add"
  }
  method "__radd__" {
    func = "RAdd"
  }
  method "__repr__" {}
  method "norm" {
    cfg = "linux"
  }
  const "ORIGIN" {
    value     = 0
    classattr = true
  }
}

class "Color" {
  variants = { Red = "ColorRed", Green = "ColorGreen" }
}
`

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRun_GeneratesFilesPerGate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": vectorManifest})
	testApp, _ := SetupAppTest(t, Config{}, dir)

	// --- Act ---
	report, err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	main := filepath.Join(dir, "vector_pyslots.go")
	gated := filepath.Join(dir, "vector_pyslots.linux.go")
	assert.Equal(t, []string{main, gated}, report.Written)
	assert.Equal(t, 1, report.Manifests)

	code := readFile(t, main)
	assert.Contains(t, code, "// Code generated by pyslotgen from vector.pyslots.hcl. DO NOT EDIT.")
	assert.Contains(t, code, "package geometry")
	assert.Contains(t, code, `_pyo3 "github.com/specialistvlad/pyslotgen/pyrt"`)
	assert.Contains(t, code, "func (*Vector) PyMethods() []_pyo3.MethodDefType")
	assert.Contains(t, code, "AddSlot[*Vector]()")
	assert.Contains(t, code, "func (Color) PyClassDefaultSlots()")
	assert.NotContains(t, code, "//go:build")

	gatedCode := readFile(t, gated)
	assert.Contains(t, gatedCode, "//go:build linux")
	assert.Contains(t, gatedCode, "_pyslotgen_Vector_methods = append(_pyslotgen_Vector_methods,")
}

func TestRun_ProjectCrateAppliesToClasses(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": vectorManifest})
	testApp, _ := SetupAppTest(t, Config{Crate: "example.com/bind/pyrt"}, dir)

	// --- Act ---
	_, err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	code := readFile(t, filepath.Join(dir, "vector_pyslots.go"))
	assert.Contains(t, code, `_pyo3 "example.com/bind/pyrt"`)
	assert.Contains(t, code, "func (Color) PyClassDefaultSlots() []_pyo3.TypeSlot")
	assert.NotContains(t, code, options.DefaultCrate)
}

func TestRun_SecondRunIsUnchanged(t *testing.T) {
	t.Parallel()

	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": vectorManifest})
	testApp, _ := SetupAppTest(t, Config{}, dir)
	_, err := testApp.Run(context.Background())
	require.NoError(t, err)

	report, err := testApp.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Len(t, report.Unchanged, 2)
}

func TestRun_CheckOnly(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": vectorManifest})
	checker, _ := SetupAppTest(t, Config{CheckOnly: true}, dir)
	generator, _ := SetupAppTest(t, Config{}, dir)

	// --- Act & Assert: nothing generated yet ---
	report, err := checker.Run(context.Background())
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Len(t, report.Stale, 2)
	assert.NoFileExists(t, filepath.Join(dir, "vector_pyslots.go"))

	// --- Act & Assert: up to date after generating ---
	_, err = generator.Run(context.Background())
	require.NoError(t, err)
	report, err = checker.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Stale)
}

func TestRun_UserErrorKeepsSiblings(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	manifest := `
package = "geometry"

impl "*Vector" {
  type_params = ["T"]
  method "__repr__" {}
}

impl "*Point" {
  method "__repr__" {}
}
`
	dir := WriteManifests(t, map[string]string{"shapes.pyslots.hcl": manifest})
	testApp, logs := SetupAppTest(t, Config{}, dir)

	// --- Act ---
	report, err := testApp.Run(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 1, report.Errors())
	assert.Contains(t, logs.String(), "Generic implementation block")
	assert.Contains(t, logs.String(), "shapes.pyslots.hcl line 5")

	code := readFile(t, filepath.Join(dir, "shapes_pyslots.go"))
	assert.Contains(t, code, "func (*Point) PyMethods()")
	assert.NotContains(t, code, "Vector")
}

func TestRun_DuplicateBlocks(t *testing.T) {
	t.Parallel()

	first := "package = \"geometry\"\nimpl \"*Vector\" {\n  method \"__add__\" {}\n}\n"
	second := "package = \"geometry\"\nimpl \"*Vector\" {\n  method \"__sub__\" {}\n}\n"
	clashing := "package = \"geometry\"\nimpl \"*Vector\" {\n  method \"__add__\" {}\n}\n"

	testCases := []struct {
		name      string
		strategy  string
		second    string
		wantError string
		wantLine  string
	}{
		{name: "direct rejects a second block", strategy: "direct", second: second, wantError: "Duplicate implementation block", wantLine: "b.pyslots.hcl line 2"},
		{name: "registry accepts distinct blocks", strategy: "registry", second: second},
		{name: "registry rejects clashing methods", strategy: "registry", second: clashing, wantError: "Duplicate generated method", wantLine: "b.pyslots.hcl line 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := WriteManifests(t, map[string]string{
				"a.pyslots.hcl": first,
				"b.pyslots.hcl": tc.second,
			})
			testApp, logs := SetupAppTest(t, Config{Strategy: tc.strategy}, dir)

			// --- Act ---
			report, err := testApp.Run(context.Background())

			// --- Assert ---
			assert.FileExists(t, filepath.Join(dir, "a_pyslots.go"), "the first block always wins")
			if tc.wantError == "" {
				require.NoError(t, err)
				assert.FileExists(t, filepath.Join(dir, "b_pyslots.go"))
				return
			}
			require.ErrorIs(t, err, ErrGenerationFailed)
			assert.Equal(t, 1, report.Errors())
			assert.Contains(t, logs.String(), tc.wantError)
			assert.Contains(t, logs.String(), tc.wantLine)
			assert.NoFileExists(t, filepath.Join(dir, "b_pyslots.go"))
		})
	}
}

func TestRun_RemovesFilesOfDroppedGates(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": vectorManifest})
	testApp, _ := SetupAppTest(t, Config{}, dir)
	_, err := testApp.Run(context.Background())
	require.NoError(t, err)

	handWritten := filepath.Join(dir, "vector_pyslots.extra.go")
	require.NoError(t, os.WriteFile(handWritten, []byte("package geometry\n"), 0o600))
	ungated := "package = \"geometry\"\nimpl \"*Vector\" {\n  method \"__repr__\" {}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vector.pyslots.hcl"), []byte(ungated), 0o600))

	// --- Act ---
	report, err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "vector_pyslots.linux.go")}, report.Removed)
	assert.NoFileExists(t, filepath.Join(dir, "vector_pyslots.linux.go"))
	assert.FileExists(t, handWritten, "files without the generated header are left alone")
}

func TestRun_WarningsDoNotFail(t *testing.T) {
	t.Parallel()

	manifest := `
package = "geometry"

impl "Vector" {
  item "type" "Inner" {}
  const "lower" {
    value     = 1
    classattr = true
  }
}
`
	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": manifest})
	testApp, logs := SetupAppTest(t, Config{Suffix: "_bindings"}, dir)

	report, err := testApp.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Warnings())
	assert.Contains(t, logs.String(), "Warning:")
	assert.FileExists(t, filepath.Join(dir, "vector_bindings.go"))
}

func TestRun_ParseErrorIsReported(t *testing.T) {
	t.Parallel()

	dir := WriteManifests(t, map[string]string{
		"broken.pyslots.hcl": "impl \"*Vector\" {\n",
		"vector.pyslots.hcl": vectorManifest,
	})
	testApp, _ := SetupAppTest(t, Config{Jobs: 1}, dir)

	report, err := testApp.Run(context.Background())

	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 2, report.Manifests)
	assert.FileExists(t, filepath.Join(dir, "vector_pyslots.go"))
}

func TestRun_NoManifests(t *testing.T) {
	t.Parallel()

	testApp, _ := SetupAppTest(t, Config{}, t.TempDir())

	_, err := testApp.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .pyslots.hcl files found")
}

// badTag tags every method with a value outside the known set.
type badTag struct{}

func (badTag) Classify(ctx context.Context, self sigclass.SelfType, m *model.Method, opts options.FunctionOptions) (sigclass.GeneratedMethod, error) {
	return sigclass.GeneratedMethod{Tag: sigclass.Tag(99)}, nil
}

func TestRun_InternalErrorPanicsOnCaller(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := WriteManifests(t, map[string]string{"vector.pyslots.hcl": vectorManifest})
	cfg, err := NewConfig(Config{Paths: []string{dir}, Jobs: 4})
	require.NoError(t, err)
	testApp := NewApp(&SafeBuffer{}, cfg, badTag{})

	// --- Act ---
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_, _ = testApp.Run(context.Background())
	}()

	// --- Assert ---
	require.NotNil(t, recovered)
	_, ok := diag.AsInternal(recovered)
	assert.True(t, ok, "got %v", recovered)
}
