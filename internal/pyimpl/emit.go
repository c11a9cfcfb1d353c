package pyimpl

import (
	"context"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
)

// PackageAlias is the import name of the binding library in generated files.
const PackageAlias = "_pyo3"

// Provider method names declared under DirectOverride.
const (
	MethodsProviderName = "PyMethods"
	SlotsProviderName   = "PyMethodsProtocolSlots"
)

// Unit is the code generated for one build constraint. Gate is empty for
// code that is always compiled.
type Unit struct {
	Gate  string
	Decls []jen.Code
}

// Expansion is everything generated for one implementation block.
type Expansion struct {
	SelfType sigclass.SelfType
	Strategy RegistrationStrategy
	Crate    string
	// Units holds the unconditional unit first, then one unit per gate in
	// order of first appearance.
	Units    []Unit
	Declared []Declared
	Warnings hcl.Diagnostics
	Output   *Output
}

// unitBuilder collects the entries of one gate before rendering.
type unitBuilder struct {
	gate       string
	traitImpls []jen.Code
	methods    []jen.Code
	slots      []jen.Code
}

// GateExpr joins the gates of a member into one build constraint.
func GateExpr(gates []string) string {
	switch len(gates) {
	case 0:
		return ""
	case 1:
		return gates[0]
	}
	parts := make([]string, len(gates))
	for i, g := range gates {
		parts[i] = "(" + g + ")"
	}
	return strings.Join(parts, " && ")
}

func emit(ctx context.Context, self sigclass.SelfType, crate string, strategy RegistrationStrategy, out *Output) *Expansion {
	builders := []*unitBuilder{{}}
	byGate := map[string]*unitBuilder{"": builders[0]}
	unitFor := func(gates []string) *unitBuilder {
		gate := GateExpr(gates)
		if b, ok := byGate[gate]; ok {
			return b
		}
		b := &unitBuilder{gate: gate}
		byGate[gate] = b
		builders = append(builders, b)
		return b
	}

	for _, f := range out.TraitImpls {
		b := unitFor(f.Gates)
		b.traitImpls = append(b.traitImpls, f.Code)
	}
	for _, f := range out.ProtoImpls {
		b := unitFor(f.Gates)
		b.slots = append(b.slots, f.Code)
	}
	for _, f := range out.Methods {
		b := unitFor(f.Gates)
		b.methods = append(b.methods, f.Code)
	}

	exp := &Expansion{
		SelfType: self,
		Strategy: strategy,
		Crate:    crate,
		Declared: out.Declared,
		Warnings: out.Warnings,
		Output:   out,
	}
	if strategy == DirectOverride {
		exp.Declared = append(exp.Declared,
			Declared{Name: MethodsProviderName},
			Declared{Name: SlotsProviderName})
	}

	for _, b := range builders {
		var decls []jen.Code
		decls = append(decls, b.traitImpls...)
		switch strategy {
		case DirectOverride:
			decls = append(decls, directOverride(self, crate, b)...)
		case DeferredRegistry:
			decls = append(decls, deferredRegistry(self, crate, b)...)
		}
		if len(decls) == 0 {
			continue
		}
		exp.Units = append(exp.Units, Unit{Gate: b.gate, Decls: decls})
	}

	ctxlog.FromContext(ctx).Debug("Emitted registration code.", "strategy", strategy.String(), "units", len(exp.Units))
	return exp
}

// multiline renders a composite literal with one element per line.
func multiline(typ *jen.Statement, items []jen.Code) *jen.Statement {
	return typ.Custom(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, items...)
}

func methodsVar(self sigclass.SelfType) string {
	return "_pyslotgen_" + self.Name + "_methods"
}

func slotsVar(self sigclass.SelfType) string {
	return "_pyslotgen_" + self.Name + "_slots"
}

func methodSlice(crate string) *jen.Statement {
	return jen.Index().Qual(crate, "MethodDefType")
}

func slotSlice(crate string) *jen.Statement {
	return jen.Index().Qual(crate, "TypeSlot")
}

// directOverride declares the provider methods and their tables. Gated units
// append to the tables from an init function instead.
func directOverride(self sigclass.SelfType, crate string, b *unitBuilder) []jen.Code {
	if b.gate != "" {
		var stmts []jen.Code
		if len(b.methods) > 0 {
			stmts = append(stmts, jen.Id(methodsVar(self)).Op("=").Append(append([]jen.Code{jen.Id(methodsVar(self))}, b.methods...)...))
		}
		if len(b.slots) > 0 {
			stmts = append(stmts, jen.Id(slotsVar(self)).Op("=").Append(append([]jen.Code{jen.Id(slotsVar(self))}, b.slots...)...))
		}
		if len(stmts) == 0 {
			return nil
		}
		return []jen.Code{jen.Func().Id("init").Params().Block(stmts...)}
	}

	return []jen.Code{
		jen.Var().Defs(
			jen.Id(methodsVar(self)).Op("=").Add(multiline(methodSlice(crate), b.methods)),
			jen.Id(slotsVar(self)).Op("=").Add(multiline(slotSlice(crate), b.slots)),
		),
		jen.Func().Params(self.Code()).Id(MethodsProviderName).Params().Add(methodSlice(crate)).
			Block(jen.Return(jen.Id(methodsVar(self)))),
		jen.Func().Params(self.Code()).Id(SlotsProviderName).Params().Add(slotSlice(crate)).
			Block(jen.Return(jen.Id(slotsVar(self)))),
	}
}

// deferredRegistry submits the unit's tables as one inventory.
func deferredRegistry(self sigclass.SelfType, crate string, b *unitBuilder) []jen.Code {
	if b.gate != "" && len(b.methods) == 0 && len(b.slots) == 0 {
		return nil
	}
	inventory := jen.Qual(crate, "Inventory").Values(jen.Dict{
		jen.Id("Methods"): multiline(methodSlice(crate), b.methods),
		jen.Id("Slots"):   multiline(slotSlice(crate), b.slots),
	})
	return []jen.Code{
		jen.Func().Id("init").Params().Block(
			jen.Qual(crate, "Submit").Types(self.Code()).Call(inventory),
		),
	}
}
