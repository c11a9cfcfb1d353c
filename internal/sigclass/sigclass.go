// Package sigclass decides how one method member is exposed to the runtime
// and generates the Go code binding it.
package sigclass

import (
	"context"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/options"
	"github.com/specialistvlad/pyslotgen/internal/protocol"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag is the dispatch category of a member.
type Tag int

const (
	// RegularMethod is an entry of the method table.
	RegularMethod Tag = iota
	// TraitImpl is a method declared on the type itself.
	TraitImpl
	// SlotFragment is one half of a merged slot, declared on the type.
	SlotFragment
	// ProtocolSlot is a complete slot table entry.
	ProtocolSlot
)

func (t Tag) String() string {
	switch t {
	case RegularMethod:
		return "RegularMethod"
	case TraitImpl:
		return "TraitImpl"
	case SlotFragment:
		return "SlotFragment"
	case ProtocolSlot:
		return "ProtocolSlot"
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// GeneratedMethod is the classification of one method with its code.
type GeneratedMethod struct {
	Tag Tag
	// Fragment is the protocol name of a SlotFragment.
	Fragment string
	// Declares is the name of the method a TraitImpl or SlotFragment declares
	// on the type.
	Declares string
	Code     jen.Code
	Warnings hcl.Diagnostics
}

// SelfType is the receiver type of an implementation block.
type SelfType struct {
	Name    string
	Pointer bool
}

// SelfTypeOf describes the receiver of block.
func SelfTypeOf(block *model.ImplBlock) SelfType {
	return SelfType{Name: block.TypeName(), Pointer: block.IsPointer()}
}

// Code renders the type expression. Every call returns a fresh statement.
func (s SelfType) Code() *jen.Statement {
	if s.Pointer {
		return jen.Op("*").Id(s.Name)
	}
	return jen.Id(s.Name)
}

func (s SelfType) String() string {
	if s.Pointer {
		return "*" + s.Name
	}
	return s.Name
}

// Method kinds accepted by the `kind` attribute.
const (
	KindMethod    = "method"
	KindStatic    = "static"
	KindClass     = "class"
	KindGetter    = "getter"
	KindSetter    = "setter"
	KindClassAttr = "classattr"
	KindNew       = "new"
)

var knownKinds = map[string]bool{
	KindMethod: true, KindStatic: true, KindClass: true, KindGetter: true,
	KindSetter: true, KindClassAttr: true, KindNew: true,
}

// Classifier is the signature classifier used by the generator.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// member is the resolved view of a method member.
type member struct {
	name      string
	nameRange hcl.Range
	kind      string
	kindRange hcl.Range
	fn        string
	doc       string
	crate     string
}

// Classify tags m and generates its binding code.
func (c *Classifier) Classify(ctx context.Context, self SelfType, m *model.Method, opts options.FunctionOptions) (GeneratedMethod, error) {
	mb, err := resolve(m, opts)
	if err != nil {
		return GeneratedMethod{}, err
	}
	logger := ctxlog.FromContext(ctx)

	var gm GeneratedMethod
	switch {
	case mb.kind == KindNew || mb.name == protocol.NewName:
		gm, err = newImpl(self, mb)
	case mb.name == protocol.CallName:
		gm, err = callImpl(self, mb)
	case protocol.IsFragment(mb.name):
		f, _ := protocol.LookupFragment(mb.name)
		gm, err = fragmentImpl(self, mb, f)
	default:
		if s, ok := protocol.Lookup(mb.name); ok {
			gm, err = slotImpl(self, mb, s)
			break
		}
		gm, err = regularMethod(self, mb)
		if err == nil && protocol.IsDunder(mb.name) {
			if suggestion, ok := protocol.Suggest(mb.name); ok {
				gm.Warnings = append(gm.Warnings, diag.Warning(mb.nameRange,
					"Unknown protocol name",
					fmt.Sprintf("%q is not a protocol name and is exposed as a regular method. Did you mean %q?", mb.name, suggestion)))
			}
		}
	}
	if err != nil {
		return GeneratedMethod{}, err
	}
	logger.Debug("Classified method.", "type", self.String(), "member", mb.name, "tag", gm.Tag.String())
	return gm, nil
}

func resolve(m *model.Method, opts options.FunctionOptions) (member, error) {
	mb := member{
		name:      m.Name,
		nameRange: m.NameRange,
		kind:      KindMethod,
		kindRange: m.DefRange,
		crate:     options.CratePath(opts.Crate),
	}
	if opts.Name != nil {
		mb.name = opts.Name.Value
		mb.nameRange = opts.Name.Range
	}

	var diags hcl.Diagnostics
	if a := model.Find(m.Attrs, "kind"); a != nil {
		s, d := a.AsString()
		diags = append(diags, d...)
		mb.kind, mb.kindRange = s, a.Range
	}
	if a := model.Find(m.Attrs, "doc"); a != nil {
		s, d := a.AsString()
		diags = append(diags, d...)
		mb.doc = s
	}
	if a := model.Find(m.Attrs, "func"); a != nil {
		s, d := a.AsString()
		diags = append(diags, d...)
		mb.fn = s
	}
	if err := diag.FromDiagnostics(diags); err != nil {
		return mb, err
	}

	if !knownKinds[mb.kind] {
		return mb, diag.Spanned(mb.kindRange, "Unknown method kind",
			fmt.Sprintf("%q is not one of method, static, class, getter, setter, classattr, new.", mb.kind))
	}
	if mb.fn == "" {
		mb.fn = GoName(mb.name)
		if mb.kind == KindSetter {
			mb.fn = "Set" + mb.fn
		}
	}
	return mb, nil
}

// GoName derives an exported Go identifier from an external name:
// "__repr__" becomes "Repr" and "get_x" becomes "GetX".
func GoName(name string) string {
	caser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part != "" {
			b.WriteString(caser.String(part))
		}
	}
	return b.String()
}

func requireMethodKind(mb member) error {
	if mb.kind == KindMethod {
		return nil
	}
	return diag.Spanned(mb.kindRange, "Invalid kind for protocol method",
		fmt.Sprintf("%q is a protocol name and must be declared with kind \"method\", not %q.", mb.name, mb.kind))
}

func requireDistinct(mb member, generated string) error {
	if mb.fn != generated {
		return nil
	}
	return diag.Spanned(mb.nameRange, "Conflicting method name",
		fmt.Sprintf("The bound function of %q may not be named %s; that name is generated.", mb.name, generated))
}

func object(crate string) *jen.Statement {
	return jen.Qual(crate, "Object")
}

func argsParams(crate string) []jen.Code {
	return []jen.Code{
		jen.Id("args").Index().Add(object(crate)),
		jen.Id("kwargs").Map(jen.String()).Add(object(crate)),
	}
}

func argsCall() []jen.Code {
	return []jen.Code{jen.Id("args"), jen.Id("kwargs")}
}

func receiver(self SelfType) *jen.Statement {
	return jen.Id("self").Assert(self.Code())
}

func newImpl(self SelfType, mb member) (GeneratedMethod, error) {
	const declares = "PyNew"
	if err := requireDistinct(mb, declares); err != nil {
		return GeneratedMethod{}, err
	}
	code := jen.Func().Params(self.Code()).Id(declares).
		Params(argsParams(mb.crate)...).
		Params(object(mb.crate), jen.Error()).
		Block(jen.Return(jen.Id(mb.fn).Call(argsCall()...)))
	return GeneratedMethod{Tag: TraitImpl, Declares: declares, Code: code}, nil
}

func callImpl(self SelfType, mb member) (GeneratedMethod, error) {
	const declares = "PyCall"
	if err := requireMethodKind(mb); err != nil {
		return GeneratedMethod{}, err
	}
	if err := requireDistinct(mb, declares); err != nil {
		return GeneratedMethod{}, err
	}
	code := jen.Func().Params(jen.Id("self").Add(self.Code())).Id(declares).
		Params(argsParams(mb.crate)...).
		Params(object(mb.crate), jen.Error()).
		Block(jen.Return(jen.Id("self").Dot(mb.fn).Call(argsCall()...)))
	return GeneratedMethod{Tag: TraitImpl, Declares: declares, Code: code}, nil
}

func paramType(crate, typ string) jen.Code {
	return jen.Qual(crate, typ)
}

func results(crate string, conv protocol.Convention) []jen.Code {
	switch {
	case conv.Result == "":
		return []jen.Code{jen.Error()}
	case conv.PyrtResult():
		return []jen.Code{jen.Qual(crate, conv.Result), jen.Error()}
	default:
		return []jen.Code{jen.Id(conv.Result), jen.Error()}
	}
}

func conventionParams(crate string, conv protocol.Convention) (params, args []jen.Code) {
	for _, p := range conv.Params {
		params = append(params, jen.Id(p.Name).Add(paramType(crate, p.Type)))
		args = append(args, jen.Id(p.Name))
	}
	return params, args
}

func fragmentImpl(self SelfType, mb member, f protocol.Fragment) (GeneratedMethod, error) {
	if err := requireMethodKind(mb); err != nil {
		return GeneratedMethod{}, err
	}
	if err := requireDistinct(mb, f.Method); err != nil {
		return GeneratedMethod{}, err
	}
	params, args := conventionParams(mb.crate, f.Convention)
	code := jen.Func().Params(jen.Id("self").Add(self.Code())).Id(f.Method).
		Params(params...).
		Params(results(mb.crate, f.Convention)...).
		Block(jen.Return(jen.Id("self").Dot(mb.fn).Call(args...)))
	return GeneratedMethod{Tag: SlotFragment, Fragment: f.Name, Declares: f.Method, Code: code}, nil
}

func slotImpl(self SelfType, mb member, s protocol.Slot) (GeneratedMethod, error) {
	if err := requireMethodKind(mb); err != nil {
		return GeneratedMethod{}, err
	}
	params, args := conventionParams(mb.crate, s.Convention)
	params = append([]jen.Code{jen.Id("self").Add(object(mb.crate))}, params...)
	fn := jen.Qual(mb.crate, s.Convention.FuncType).Call(
		jen.Func().Params(params...).
			Params(results(mb.crate, s.Convention)...).
			Block(jen.Return(receiver(self).Dot(mb.fn).Call(args...))),
	)
	code := jen.Qual(mb.crate, "TypeSlot").Values(jen.Dict{
		jen.Id("ID"):   jen.Qual(mb.crate, s.SlotID),
		jen.Id("Func"): fn,
	})
	return GeneratedMethod{Tag: ProtocolSlot, Code: code}, nil
}

func regularMethod(self SelfType, mb member) (GeneratedMethod, error) {
	crate := mb.crate
	named := func(extra jen.Dict) jen.Dict {
		d := jen.Dict{jen.Id("Name"): jen.Lit(mb.name)}
		if mb.doc != "" {
			d[jen.Id("Doc")] = jen.Lit(mb.doc)
		}
		for k, v := range extra {
			d[k] = v
		}
		return d
	}
	callable := func(first string, body jen.Code) jen.Code {
		params := append([]jen.Code{jen.Id(first).Add(object(crate))}, argsParams(crate)...)
		return jen.Func().Params(params...).Params(object(crate), jen.Error()).Block(body)
	}

	var code jen.Code
	switch mb.kind {
	case KindMethod:
		code = jen.Qual(crate, "Method").Call(jen.Qual(crate, "MethodDef").Values(named(jen.Dict{
			jen.Id("Call"): callable("self", jen.Return(receiver(self).Dot(mb.fn).Call(argsCall()...))),
		})))
	case KindClass:
		code = jen.Qual(crate, "ClassMethod").Call(jen.Qual(crate, "MethodDef").Values(named(jen.Dict{
			jen.Id("Call"): callable("cls", jen.Return(jen.Id(mb.fn).Call(append([]jen.Code{jen.Id("cls")}, argsCall()...)...))),
		})))
	case KindStatic:
		code = jen.Qual(crate, "StaticMethod").Call(jen.Qual(crate, "MethodDef").Values(named(jen.Dict{
			jen.Id("Call"): callable("_", jen.Return(jen.Id(mb.fn).Call(argsCall()...))),
		})))
	case KindGetter:
		get := jen.Func().Params(jen.Id("self").Add(object(crate))).Params(object(crate), jen.Error()).
			Block(jen.Return(receiver(self).Dot(mb.fn).Call()))
		code = jen.Qual(crate, "Getter").Call(jen.Qual(crate, "GetterDef").Values(named(jen.Dict{jen.Id("Get"): get})))
	case KindSetter:
		set := jen.Func().Params(jen.List(jen.Id("self"), jen.Id("value")).Add(object(crate))).Error().
			Block(jen.Return(receiver(self).Dot(mb.fn).Call(jen.Id("value"))))
		code = jen.Qual(crate, "Setter").Call(jen.Qual(crate, "SetterDef").Values(named(jen.Dict{jen.Id("Set"): set})))
	case KindClassAttr:
		factory := jen.Func().Params().Add(object(crate)).Block(jen.Return(jen.Id(mb.fn).Call()))
		code = jen.Qual(crate, "ClassAttribute").Call(jen.Qual(crate, "ClassAttributeDef").Values(jen.Dict{
			jen.Id("Name"):    jen.Lit(mb.name),
			jen.Id("Factory"): factory,
		}))
	default:
		return GeneratedMethod{}, diag.Spanned(mb.kindRange, "Unknown method kind", fmt.Sprintf("%q is not a method kind.", mb.kind))
	}
	return GeneratedMethod{Tag: RegularMethod, Code: code}, nil
}
