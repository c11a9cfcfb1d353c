// Package pyimpl expands one implementation block into registration code:
// it classifies every member, merges operator fragments into shared slots
// and emits the tables for the selected registration strategy.
package pyimpl

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/konst"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/options"
	"github.com/specialistvlad/pyslotgen/internal/protocol"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
)

// LintNonUpperCaseGlobals is the naming lint for class-attribute constants.
const LintNonUpperCaseGlobals = "non_upper_case_globals"

// MethodClassifier tags one method and generates its binding code.
type MethodClassifier interface {
	Classify(ctx context.Context, self sigclass.SelfType, m *model.Method, opts options.FunctionOptions) (sigclass.GeneratedMethod, error)
}

// Fragment is generated code together with the build constraints of the
// member it came from.
type Fragment struct {
	Code  jen.Code
	Gates []string
}

// Declared is a method the generated code declares on the type.
type Declared struct {
	Name  string
	Range hcl.Range
}

// Output holds the classified members of one implementation block.
type Output struct {
	TraitImpls []Fragment
	ProtoImpls []Fragment
	Methods    []Fragment

	// Passthrough holds members left out of every table.
	Passthrough []model.Item

	// ImplementedFragments are the protocol names of every SlotFragment.
	ImplementedFragments map[string]struct{}

	// Merged lists the shims appended by the slot merger, in table order.
	Merged []string

	Declared []Declared
	Warnings hcl.Diagnostics
}

func newOutput() *Output {
	return &Output{ImplementedFragments: make(map[string]struct{})}
}

// Settings are the project-wide defaults of an expansion.
type Settings struct {
	Strategy RegistrationStrategy
	// Crate replaces DefaultCrate for blocks without a crate option.
	Crate string
}

// CratePath returns the binding library import path selected by s.
func (s Settings) CratePath() string {
	if s.Crate == "" {
		return options.DefaultCrate
	}
	return s.Crate
}

// BuildPyMethods expands block. Trait blocks and generic blocks are rejected
// before any member is looked at.
func BuildPyMethods(ctx context.Context, block *model.ImplBlock, strategy RegistrationStrategy, classifier MethodClassifier) (*Expansion, error) {
	return Build(ctx, block, Settings{Strategy: strategy}, classifier)
}

// Build is BuildPyMethods with project-wide settings.
func Build(ctx context.Context, block *model.ImplBlock, settings Settings, classifier MethodClassifier) (*Expansion, error) {
	switch {
	case block.Trait != nil:
		return nil, diag.Spanned(block.Trait.Range, "Trait implementation block",
			"Bindings cannot be generated for a block implementing an interface.")
	case block.HasTypeParams():
		rng := block.TypeRange
		if block.TypeParams != nil {
			rng = block.TypeParams.Range
		}
		return nil, diag.Spanned(rng, "Generic implementation block",
			"Bindings cannot be generated for a block with type parameters or generics.")
	}

	opts, err := options.FromAttrs(&block.Attrs)
	if err != nil {
		return nil, err
	}
	if opts.Crate == nil && settings.Crate != "" {
		opts.Crate = &options.CrateAttribute{Path: settings.Crate, Range: block.DefRange}
	}
	return ImplMethods(ctx, sigclass.SelfTypeOf(block), block.Items, settings.Strategy, opts, classifier)
}

// ImplMethods classifies items, merges their fragments and emits the result.
func ImplMethods(ctx context.Context, self sigclass.SelfType, items []model.Item, strategy RegistrationStrategy, opts options.ImplOptions, classifier MethodClassifier) (*Expansion, error) {
	ctx = ctxlog.With(ctx, "type", self.String())
	crate := options.CratePath(opts.Crate)

	out, err := classifyMembers(ctx, self, items, opts, classifier)
	if err != nil {
		return nil, err
	}
	addSharedProtoSlots(ctx, self, crate, out)
	return emit(ctx, self, crate, strategy, out), nil
}

// memberResult is the first-phase result for one member. Attribute lists are
// classified on a copy and committed in the second phase.
type memberResult struct {
	attrs   []*model.Attribute
	target  *[]*model.Attribute
	rewrite *model.Attribute
	lint    *konst.ConstSpec
	rng     hcl.Range
}

func classifyMembers(ctx context.Context, self sigclass.SelfType, items []model.Item, opts options.ImplOptions, classifier MethodClassifier) (*Output, error) {
	logger := ctxlog.FromContext(ctx)
	out := newOutput()
	blockCrate := options.CratePath(opts.Crate)
	declared := make(map[string]bool)
	slotNames := make(map[string]bool)
	var results []memberResult

	for _, item := range items {
		switch it := item.(type) {
		case *model.Method:
			attrs := slices.Clone(it.Attrs)
			funOpts, err := options.FunctionOptionsFromAttrs(&attrs)
			if err != nil {
				return nil, err
			}
			funOpts.MergeCrate(opts.Crate)

			gates, diags := model.CfgGates(attrs)
			if err := diag.FromDiagnostics(diags); err != nil {
				return nil, err
			}

			gm, err := classifier.Classify(ctx, self, &model.Method{
				Name: it.Name, Attrs: attrs, NameRange: it.NameRange, DefRange: it.DefRange, Decl: it.Decl,
			}, funOpts)
			if err != nil {
				return nil, err
			}
			out.Warnings = append(out.Warnings, gm.Warnings...)
			frag := Fragment{Code: gm.Code, Gates: gates}

			if gm.Declares != "" {
				if declared[gm.Declares] {
					return nil, diag.Spanned(it.NameRange, "Duplicate binding",
						fmt.Sprintf("Another member of this block already generates %s.", gm.Declares))
				}
				declared[gm.Declares] = true
				out.Declared = append(out.Declared, Declared{Name: gm.Declares, Range: it.NameRange})
			}

			switch gm.Tag {
			case sigclass.RegularMethod:
				out.Methods = append(out.Methods, frag)
			case sigclass.TraitImpl:
				out.TraitImpls = append(out.TraitImpls, frag)
			case sigclass.SlotFragment:
				out.ImplementedFragments[gm.Fragment] = struct{}{}
				out.TraitImpls = append(out.TraitImpls, frag)
			case sigclass.ProtocolSlot:
				name := it.Name
				if funOpts.Name != nil {
					name = funOpts.Name.Value
				}
				if slotNames[name] {
					return nil, diag.Spanned(it.NameRange, "Duplicate protocol slot",
						fmt.Sprintf("%q is already implemented by another member of this block.", name))
				}
				slotNames[name] = true
				out.ProtoImpls = append(out.ProtoImpls, frag)
			default:
				diag.Fatalf("classifier returned unknown tag %s for %q", gm.Tag, it.Name)
			}
			results = append(results, memberResult{attrs: attrs, target: &it.Attrs, rng: it.DefRange})

		case *model.Const:
			attrs := slices.Clone(it.Attrs)
			constAttrs, err := konst.FromAttrs(&attrs)
			if err != nil {
				return nil, err
			}
			gates, diags := model.CfgGates(attrs)
			if err := diag.FromDiagnostics(diags); err != nil {
				return nil, err
			}
			res := memberResult{attrs: attrs, target: &it.Attrs, rng: it.DefRange}
			if !constAttrs.IsClassAttr {
				out.Passthrough = append(out.Passthrough, it)
				results = append(results, res)
				break
			}
			spec := &konst.ConstSpec{Ident: it.Name, Attributes: constAttrs, DefRange: it.DefRange}
			code, diags := GenPyConst(spec, blockCrate)
			if err := diag.FromDiagnostics(diags); err != nil {
				return nil, err
			}
			out.Methods = append(out.Methods, Fragment{Code: code, Gates: gates})
			if protocol.IsProtoMethod(spec.PythonName()) {
				res.rewrite = model.NewAllowAttribute(LintNonUpperCaseGlobals, it.NameRange)
			}
			res.lint = spec
			results = append(results, res)

		case *model.Other:
			out.Passthrough = append(out.Passthrough, it)
			out.Warnings = append(out.Warnings, diag.Warning(it.DefRange, "Member passed through",
				fmt.Sprintf("%s %q is neither a method nor a constant and is left out of the generated tables.", it.Kind, it.Name)))

		default:
			diag.Fatalf("unknown member type %T", item)
		}
	}

	// Second phase: commit the stripped attribute lists and the lint
	// suppressions, then run the naming lint against the result.
	for _, res := range results {
		attrs := res.attrs
		if res.rewrite != nil {
			attrs = append(attrs, res.rewrite)
		}
		*res.target = attrs
		if res.lint != nil && !isUpperCase(res.lint.Ident) && !model.Allows(attrs, LintNonUpperCaseGlobals) {
			out.Warnings = append(out.Warnings, diag.Warning(res.rng, "Constant name is not upper case",
				fmt.Sprintf("Class attribute constant %q should have an upper case name.", res.lint.Ident)))
		}
	}

	logger.Debug("Classified members.",
		"methods", len(out.Methods),
		"trait_impls", len(out.TraitImpls),
		"proto_impls", len(out.ProtoImpls),
		"fragments", len(out.ImplementedFragments),
		"passthrough", len(out.Passthrough))
	return out, nil
}

func isUpperCase(name string) bool {
	return name == strings.ToUpper(name)
}

// GenPyConst renders the class-attribute entry of a constant.
func GenPyConst(spec *konst.ConstSpec, crate string) (jen.Code, hcl.Diagnostics) {
	value, diags := spec.ValueCode()
	if diags.HasErrors() {
		return nil, diags
	}
	var body []jen.Code
	if dep := spec.Deprecations(crate); dep != nil {
		body = append(body, dep)
	}
	body = append(body, jen.Return(value))

	factory := jen.Func().Params().Qual(crate, "Object").Block(body...)
	return jen.Qual(crate, "ClassAttribute").Call(jen.Qual(crate, "ClassAttributeDef").Values(jen.Dict{
		jen.Id("Name"):    jen.Lit(spec.PythonName()),
		jen.Id("Factory"): factory,
	})), nil
}
