package pyimpl

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/options"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
	"github.com/specialistvlad/pyslotgen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	parseBlock = testutil.ParseImpl
	methods    = testutil.Methods
)

func build(t *testing.T, body string, strategy RegistrationStrategy) *Expansion {
	t.Helper()
	exp, err := BuildPyMethods(context.Background(), parseBlock(t, "*Vector", body), strategy, sigclass.New())
	require.NoError(t, err)
	return exp
}

func render(t *testing.T, exp *Expansion) string {
	t.Helper()
	var b strings.Builder
	for _, u := range exp.Units {
		f := jen.NewFile("geometry")
		f.ImportAlias(exp.Crate, PackageAlias)
		if u.Gate != "" {
			f.HeaderComment("//go:build " + u.Gate)
		}
		for _, d := range u.Decls {
			f.Add(d)
		}
		b.WriteString(fmt.Sprintf("%#v", f))
	}
	return b.String()
}

func requireInternalPanic(t *testing.T, fn func()) *diag.InternalConsistencyError {
	t.Helper()
	var got *diag.InternalConsistencyError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected an internal consistency panic")
			e, ok := diag.AsInternal(r)
			require.True(t, ok, "unexpected panic value %v", r)
			got = e
		}()
		fn()
	}()
	return got
}

// fakeClassifier returns a fixed classification for every method.
type fakeClassifier struct {
	result sigclass.GeneratedMethod
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, _ sigclass.SelfType, _ *model.Method, _ options.FunctionOptions) (sigclass.GeneratedMethod, error) {
	f.calls++
	return f.result, nil
}

func TestPartitionCompleteness(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	body := methods("norm", "__repr__", "__add__", "__rsub__", "__call__", "__new__", "__setitem__") + `
  const "ORIGIN" {
    value     = 0
    classattr = true
  }
  const "SCALE" {
    value = 2
  }
  item "type" "Inner" {}
`
	block := parseBlock(t, "*Vector", body)
	total := len(block.Items)

	// --- Act ---
	exp, err := BuildPyMethods(context.Background(), block, DeferredRegistry, sigclass.New())

	// --- Assert ---
	require.NoError(t, err)
	out := exp.Output
	rawSlots := len(out.ProtoImpls) - len(out.Merged)
	assert.Equal(t, total, len(out.Methods)+len(out.TraitImpls)+rawSlots+len(out.Passthrough))
	assert.Len(t, out.Methods, 2, "norm and ORIGIN")
	assert.Len(t, out.TraitImpls, 5, "__add__, __rsub__, __call__, __new__, __setitem__")
	assert.Equal(t, 1, rawSlots, "__repr__")
	assert.Len(t, out.Passthrough, 2, "SCALE and Inner")
	assert.Equal(t, []string{"SetitemSlot", "AddSlot", "SubSlot"}, out.Merged)
	assert.Empty(t, out.ImplementedFragments)
}

func TestMergeCompleteness(t *testing.T) {
	t.Parallel()

	for _, rule := range SlotPairRules() {
		for _, variant := range []struct {
			name  string
			names []string
		}{
			{name: "first", names: []string{rule.First}},
			{name: "second", names: []string{rule.Second}},
			{name: "both", names: []string{rule.First, rule.Second}},
		} {
			t.Run(rule.Shim+"/"+variant.name, func(t *testing.T) {
				t.Parallel()

				// --- Act ---
				exp := build(t, methods(variant.names...), DeferredRegistry)

				// --- Assert ---
				out := exp.Output
				assert.Equal(t, []string{rule.Shim}, out.Merged)
				require.Len(t, out.ProtoImpls, 1, "only the merged entry reaches the slot table")
				assert.Contains(t, fmt.Sprintf("%#v", out.ProtoImpls[0].Code), rule.Shim+"[*Vector]()")
				assert.Len(t, out.TraitImpls, len(variant.names))
				assert.Empty(t, out.ImplementedFragments)
			})
		}
	}
}

func TestSlotPairRulesAreFixed(t *testing.T) {
	t.Parallel()

	rules := SlotPairRules()
	require.Len(t, rules, 17)
	seen := map[string]bool{}
	for _, r := range rules {
		assert.False(t, seen[r.First] || seen[r.Second], "fragment listed twice: %v", r)
		seen[r.First], seen[r.Second] = true, true
	}
	assert.Equal(t, "SetattrSlot", rules[0].Shim)
	assert.Equal(t, "PowSlot", rules[16].Shim)
}

func TestMergeEmptiness(t *testing.T) {
	t.Parallel()

	// --- Act ---
	exp := build(t, methods("norm", "__repr__", "__len__", "__iadd__"), DeferredRegistry)

	// --- Assert ---
	out := exp.Output
	assert.Empty(t, out.Merged)
	assert.Len(t, out.ProtoImpls, 3)
	assert.Len(t, out.Methods, 1)
	assert.Empty(t, out.TraitImpls)
}

func TestResidueIsFatal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	classifier := &fakeClassifier{result: sigclass.GeneratedMethod{
		Tag:      sigclass.SlotFragment,
		Fragment: "__bogus__",
		Declares: "PyBogus",
		Code:     jen.Null(),
	}}
	block := parseBlock(t, "*Vector", methods("anything"))

	// --- Act & Assert ---
	err := requireInternalPanic(t, func() {
		_, _ = BuildPyMethods(context.Background(), block, DirectOverride, classifier)
	})
	assert.Contains(t, err.Error(), "__bogus__")
	assert.Equal(t, 1, classifier.calls)
}

func TestShapeRejection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		label string
		body  string
	}{
		{name: "generic label", label: "*Vector[T]"},
		{name: "type params", label: "*Vector", body: `  type_params = ["T"]`},
		{name: "trait", label: "*Vector", body: `  implements = "fmt.Stringer"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			block := parseBlock(t, tc.label, tc.body+"\n"+methods("norm"))
			classifier := &fakeClassifier{}

			// --- Act ---
			_, err := BuildPyMethods(context.Background(), block, DeferredRegistry, classifier)

			// --- Assert ---
			var uce *diag.UserConfigError
			require.ErrorAs(t, err, &uce)
			assert.Zero(t, classifier.calls, "no member may be classified")
		})
	}
}

func TestDuplicateCrateOption(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	body := `  pyo3 {
    crate = "example.com/pyrt"
  }
  pyo3 {
    crate = "example.com/pyrt"
  }
` + methods("norm")
	block := parseBlock(t, "*Vector", body)

	// --- Act ---
	_, err := BuildPyMethods(context.Background(), block, DirectOverride, sigclass.New())

	// --- Assert ---
	var uce *diag.UserConfigError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, 7, uce.Diags[0].Subject.Start.Line, "points at the second occurrence")
}

func TestUserErrorsAbortTheBlock(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		body string
	}{
		{name: "duplicate fragment", body: methods("__add__") + "  method \"plus\" {\n    pyo3 {\n      name = \"__add__\"\n    }\n  }\n"},
		{name: "duplicate slot", body: methods("__repr__") + "  method \"show\" {\n    pyo3 {\n      name = \"__repr__\"\n    }\n  }\n"},
		{name: "bad constant", body: "  const \"X\" {\n    value     = [1]\n    classattr = true\n  }\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			block := parseBlock(t, "*Vector", tc.body)

			_, err := BuildPyMethods(context.Background(), block, DeferredRegistry, sigclass.New())

			var uce *diag.UserConfigError
			require.ErrorAs(t, err, &uce)
		})
	}
}

func TestInvalidCfgIsReported(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		body        string
		wantSummary string
	}{
		{
			name:        "incomplete constraint",
			body:        "  method \"__repr__\" {\n    cfg = \"linux &&\"\n  }\n",
			wantSummary: "Invalid cfg",
		},
		{
			name:        "not a string",
			body:        "  method \"norm\" {\n    cfg = [\"linux\"]\n  }\n",
			wantSummary: "Unsuitable value type",
		},
		{
			name:        "constant",
			body:        "  const \"ORIGIN\" {\n    cfg       = \"!\"\n    value     = 0\n    classattr = true\n  }\n",
			wantSummary: "Invalid cfg",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			block := parseBlock(t, "*Vector", tc.body)

			// --- Act ---
			exp, err := BuildPyMethods(context.Background(), block, DirectOverride, sigclass.New())

			// --- Assert ---
			require.Nil(t, exp)
			var uce *diag.UserConfigError
			require.ErrorAs(t, err, &uce)
			require.Len(t, uce.Diags, 1)
			assert.Equal(t, tc.wantSummary, uce.Diags[0].Summary)
			require.NotNil(t, uce.Diags[0].Subject)
			assert.Equal(t, 4, uce.Diags[0].Subject.Start.Line, "points at the cfg attribute")
		})
	}
}

func TestScenarioA_SetattrDelattr(t *testing.T) {
	t.Parallel()

	// --- Act ---
	exp := build(t, methods("__setattr__", "__delattr__"), DirectOverride)

	// --- Assert ---
	out := exp.Output
	assert.Equal(t, []string{"SetattrSlot"}, out.Merged)
	require.Len(t, out.ProtoImpls, 1)
	code := render(t, exp)
	assert.Equal(t, 1, strings.Count(code, "SetattrSlot[*Vector]()"))
	assert.NotContains(t, code, "SlotTpSetattro")
	assert.Contains(t, code, "func (self *Vector) PySetattr(")
	assert.Contains(t, code, "func (self *Vector) PyDelattr(")
}

func TestScenarioC_ProtocolNamedConstant(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	body := `
  const "__len__" {
    value     = 5
    classattr = true
  }
  const "lower" {
    value     = 1
    classattr = true
  }
`
	block := parseBlock(t, "*Vector", body)

	// --- Act ---
	exp, err := BuildPyMethods(context.Background(), block, DeferredRegistry, sigclass.New())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, exp.Output.Methods, 2)
	assert.Contains(t, fmt.Sprintf("%#v", exp.Output.Methods[0].Code), `"__len__"`)

	protoConst := block.Items[0].(*model.Const)
	assert.True(t, model.Allows(protoConst.Attrs, LintNonUpperCaseGlobals))
	lowerConst := block.Items[1].(*model.Const)
	assert.False(t, model.Allows(lowerConst.Attrs, LintNonUpperCaseGlobals))

	require.Len(t, exp.Warnings, 1, "only the ordinary lower-case constant is linted")
	assert.Contains(t, exp.Warnings[0].Detail, `"lower"`)
}

func TestExplicitAllowSuppressesLint(t *testing.T) {
	t.Parallel()

	body := `
  const "lower" {
    value     = 1
    classattr = true
    allow     = "non_upper_case_globals"
  }
`
	exp := build(t, body, DeferredRegistry)

	assert.Empty(t, exp.Warnings)
}

func TestPassthroughWarns(t *testing.T) {
	t.Parallel()

	exp := build(t, `  item "type" "Inner" {}`, DeferredRegistry)

	require.Len(t, exp.Warnings, 1)
	assert.Equal(t, "Member passed through", exp.Warnings[0].Summary)
	require.Len(t, exp.Units, 1)
	assert.Len(t, exp.Units[0].Decls, 1, "only the empty registration is emitted")
}

func TestClassificationCommitsStrippedAttributes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	body := "  method \"norm\" {\n    cfg = \"linux\"\n    pyo3 {\n      name = \"length\"\n    }\n  }\n"
	block := parseBlock(t, "*Vector", body)

	// --- Act ---
	_, err := BuildPyMethods(context.Background(), block, DeferredRegistry, sigclass.New())

	// --- Assert ---
	require.NoError(t, err)
	m := block.Items[0].(*model.Method)
	assert.Nil(t, model.Find(m.Attrs, model.AttrOptions))
	gates, diags := model.CfgGates(m.Attrs)
	require.False(t, diags.HasErrors())
	assert.Equal(t, []string{"linux"}, gates)
}

func TestEmit_DirectOverride(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	body := methods("norm", "__repr__", "__add__") + `
  method "__radd__" {
    cfg = "linux"
  }
  method "scale" {
    cfg = "linux"
  }
`

	// --- Act ---
	exp := build(t, body, DirectOverride)

	// --- Assert ---
	require.Len(t, exp.Units, 2)
	assert.Equal(t, "", exp.Units[0].Gate)
	assert.Equal(t, "linux", exp.Units[1].Gate)

	code := render(t, exp)
	assert.Contains(t, code, `_pyo3 "github.com/specialistvlad/pyslotgen/pyrt"`)
	assert.Contains(t, code, "func (*Vector) PyMethods() []_pyo3.MethodDefType")
	assert.Contains(t, code, "func (*Vector) PyMethodsProtocolSlots() []_pyo3.TypeSlot")
	assert.Contains(t, code, "_pyslotgen_Vector_methods = append(_pyslotgen_Vector_methods,")
	assert.Contains(t, code, "//go:build linux")
	assert.Equal(t, 1, strings.Count(code, "AddSlot[*Vector]()"), "the merged slot is unconditional")
	assert.NotContains(t, code, "Submit")

	names := make([]string, 0, len(exp.Declared))
	for _, d := range exp.Declared {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"PyAdd", "PyRAdd", MethodsProviderName, SlotsProviderName}, names)
}

func TestEmit_DeferredRegistry(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	body := `  pyo3 {
    crate = "example.com/fork/pyrt"
  }
` + methods("norm", "__mul__", "__call__") + `
  method "__hash__" {
    cfg = "linux"
  }
`

	// --- Act ---
	exp := build(t, body, DeferredRegistry)

	// --- Assert ---
	assert.Equal(t, "example.com/fork/pyrt", exp.Crate)
	require.Len(t, exp.Units, 2)
	code := render(t, exp)
	assert.Contains(t, code, `_pyo3 "example.com/fork/pyrt"`)
	assert.Equal(t, 2, strings.Count(code, "_pyo3.Submit[*Vector](_pyo3.Inventory{"))
	assert.Contains(t, code, "func (self *Vector) PyCall(")
	assert.Contains(t, code, "MulSlot[*Vector]()")
	assert.NotContains(t, code, "PyMethods()")
}

func TestGateExpr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", GateExpr(nil))
	assert.Equal(t, "linux", GateExpr([]string{"linux"}))
	assert.Equal(t, "(linux) && (amd64 || arm64)", GateExpr([]string{"linux", "amd64 || arm64"}))
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	s, err := ParseStrategy("direct")
	require.NoError(t, err)
	assert.Equal(t, DirectOverride, s)

	s, err = ParseStrategy("Registry")
	require.NoError(t, err)
	assert.Equal(t, DeferredRegistry, s)

	_, err = ParseStrategy("specialization")
	assert.Error(t, err)
}

func TestBuild_ProjectCrate(t *testing.T) {
	t.Parallel()

	settings := Settings{Strategy: DeferredRegistry, Crate: "example.com/project/pyrt"}

	t.Run("applies without a block option", func(t *testing.T) {
		t.Parallel()

		exp, err := Build(context.Background(), parseBlock(t, "*Vector", methods("__repr__")), settings, sigclass.New())

		require.NoError(t, err)
		assert.Equal(t, "example.com/project/pyrt", exp.Crate)
	})

	t.Run("block option wins", func(t *testing.T) {
		t.Parallel()

		body := "  pyo3 { crate = \"example.com/fork/pyrt\" }\n" + methods("__repr__")
		exp, err := Build(context.Background(), parseBlock(t, "*Vector", body), settings, sigclass.New())

		require.NoError(t, err)
		assert.Equal(t, "example.com/fork/pyrt", exp.Crate)
	})
}
