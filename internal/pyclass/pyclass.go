// Package pyclass supplies the library-authored protocol slots of simple enum
// classes: repr, integer conversion and equality.
package pyclass

import (
	"context"

	"github.com/dave/jennifer/jen"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/pyimpl"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
)

const (
	reprMethod    = "pyDefaultRepr"
	intMethod     = "pyDefaultInt"
	richcmpMethod = "pyDefaultRichcmp"
)

// Expand generates the default slots of cls against the binding library at
// crate.
func Expand(ctx context.Context, cls *model.ClassDef, crate string, classifier pyimpl.MethodClassifier) []jen.Code {
	self := sigclass.SelfType{Name: cls.Name}
	return pyimpl.GenDefaultSlotImpls(ctx, self, crate, DefaultMethods(cls, crate), classifier)
}

// DefaultMethods returns the library-authored methods enabled for cls.
func DefaultMethods(cls *model.ClassDef, crate string) []*model.Method {
	var defs []*model.Method
	if cls.Defaults.Repr {
		defs = append(defs, libraryMethod(cls, "__repr__", reprMethod, reprDecl(cls)))
	}
	if cls.Defaults.Int {
		defs = append(defs, libraryMethod(cls, "__int__", intMethod, intDecl(cls, crate)))
	}
	if cls.Defaults.Richcmp {
		defs = append(defs, libraryMethod(cls, "__richcmp__", richcmpMethod, richcmpDecl(cls, crate)))
	}
	return defs
}

func libraryMethod(cls *model.ClassDef, name, fn string, decl jen.Code) *model.Method {
	return &model.Method{
		Name:      name,
		Attrs:     []*model.Attribute{model.NewStringAttribute("func", fn, cls.DefRange)},
		NameRange: cls.DefRange,
		DefRange:  cls.DefRange,
		Decl:      decl,
	}
}

func receiver(cls *model.ClassDef) *jen.Statement {
	return jen.Params(jen.Id("self").Id(cls.Name))
}

func object(crate string) *jen.Statement {
	return jen.Qual(crate, "Object")
}

func notImplemented(crate string) *jen.Statement {
	return jen.Qual(crate, "NotImplemented")
}

func reprDecl(cls *model.ClassDef) jen.Code {
	cases := make([]jen.Code, 0, len(cls.Variants))
	for _, v := range cls.Variants {
		cases = append(cases, jen.Case(jen.Id(v.Ident)).Block(
			jen.Return(jen.Lit(cls.Name+"."+v.Name), jen.Nil()),
		))
	}
	return jen.Func().Add(receiver(cls)).Id(reprMethod).Params().Params(jen.String(), jen.Error()).Block(
		jen.Switch(jen.Id("self")).Block(cases...),
		jen.Return(jen.Qual("fmt", "Sprintf").Call(jen.Lit(cls.Name+"(%d)"), jen.Id("self")), jen.Nil()),
	)
}

func intDecl(cls *model.ClassDef, crate string) jen.Code {
	return jen.Func().Add(receiver(cls)).Id(intMethod).Params().Params(object(crate), jen.Error()).Block(
		jen.Return(jen.Int64().Call(jen.Id("self")), jen.Nil()),
	)
}

func richcmpDecl(cls *model.ClassDef, crate string) jen.Code {
	return jen.Func().Add(receiver(cls)).Id(richcmpMethod).
		Params(jen.Id("other").Add(object(crate)), jen.Id("op").Qual(crate, "CompareOp")).
		Params(object(crate), jen.Error()).
		Block(
			jen.List(jen.Id("o"), jen.Id("ok")).Op(":=").Id("other").Assert(jen.Id(cls.Name)),
			jen.If(jen.Op("!").Id("ok")).Block(jen.Return(notImplemented(crate), jen.Nil())),
			jen.Switch(jen.Id("op")).Block(
				jen.Case(jen.Qual(crate, "CompareEq")).Block(jen.Return(jen.Id("self").Op("==").Id("o"), jen.Nil())),
				jen.Case(jen.Qual(crate, "CompareNe")).Block(jen.Return(jen.Id("self").Op("!=").Id("o"), jen.Nil())),
			),
			jen.Return(notImplemented(crate), jen.Nil()),
		)
}
