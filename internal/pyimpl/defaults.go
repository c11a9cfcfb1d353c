package pyimpl

import (
	"context"
	"slices"

	"github.com/dave/jennifer/jen"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/model"
	"github.com/specialistvlad/pyslotgen/internal/options"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
)

// DefaultSlotsProviderName is the method declared by GenDefaultSlotImpls.
const DefaultSlotsProviderName = "PyClassDefaultSlots"

// GenDefaultSlotImpls emits library-authored methods together with the list
// of default slots they implement. The definitions come from this module, so
// anything other than a complete protocol slot is a generator defect. crate is
// the import path of the binding library the slots are built against.
func GenDefaultSlotImpls(ctx context.Context, self sigclass.SelfType, crate string, defs []*model.Method, classifier MethodClassifier) []jen.Code {
	logger := ctxlog.FromContext(ctx)
	var decls, slots []jen.Code

	for _, def := range defs {
		if def.Decl == nil {
			diag.Fatalf("default method %q of %s has no declaration", def.Name, self)
		}
		attrs := slices.Clone(def.Attrs)
		opts, err := options.FunctionOptionsFromAttrs(&attrs)
		if err != nil {
			diag.Fatalf("default method %q of %s: %v", def.Name, self, err)
		}
		opts.MergeCrate(&options.CrateAttribute{Path: crate, Range: def.DefRange})
		gm, err := classifier.Classify(ctx, self, &model.Method{
			Name: def.Name, Attrs: attrs, NameRange: def.NameRange, DefRange: def.DefRange, Decl: def.Decl,
		}, opts)
		if err != nil {
			diag.Fatalf("default method %q of %s: %v", def.Name, self, err)
		}

		switch gm.Tag {
		case sigclass.ProtocolSlot:
			slots = append(slots, gm.Code)
		case sigclass.SlotFragment:
			diag.Fatalf("slot fragment %q of %s cannot have a default implementation", def.Name, self)
		default:
			diag.Fatalf("only protocol methods can have a default implementation; %q of %s is a %s", def.Name, self, gm.Tag)
		}
		decls = append(decls, def.Decl)
		logger.Debug("Added default slot.", "type", self.String(), "member", def.Name)
	}

	provider := jen.Func().Params(self.Code()).Id(DefaultSlotsProviderName).Params().Add(slotSlice(crate)).
		Block(jen.Return(multiline(slotSlice(crate), slots)))
	return append(decls, provider)
}
