package pyimpl

import (
	"context"
	"sort"

	"github.com/dave/jennifer/jen"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/diag"
	"github.com/specialistvlad/pyslotgen/internal/sigclass"
)

// SlotPairRule binds two complementary fragments to the shim that merges
// them into one slot.
type SlotPairRule struct {
	First  string
	Second string
	// Shim is the generic pyrt function building the merged slot.
	Shim string
}

var slotPairRules = [...]SlotPairRule{
	{"__setattr__", "__delattr__", "SetattrSlot"},
	{"__set__", "__delete__", "SetdescrSlot"},
	{"__setitem__", "__delitem__", "SetitemSlot"},
	{"__add__", "__radd__", "AddSlot"},
	{"__sub__", "__rsub__", "SubSlot"},
	{"__mul__", "__rmul__", "MulSlot"},
	{"__mod__", "__rmod__", "ModSlot"},
	{"__divmod__", "__rdivmod__", "DivmodSlot"},
	{"__lshift__", "__rlshift__", "LshiftSlot"},
	{"__rshift__", "__rrshift__", "RshiftSlot"},
	{"__and__", "__rand__", "AndSlot"},
	{"__or__", "__ror__", "OrSlot"},
	{"__xor__", "__rxor__", "XorSlot"},
	{"__matmul__", "__rmatmul__", "MatmulSlot"},
	{"__truediv__", "__rtruediv__", "TruedivSlot"},
	{"__floordiv__", "__rfloordiv__", "FloordivSlot"},
	{"__pow__", "__rpow__", "PowSlot"},
}

// SlotPairRules returns the merge table in application order.
func SlotPairRules() []SlotPairRule {
	return slotPairRules[:]
}

// addSharedProtoSlots replaces the implemented fragments with one merged slot
// per pair. Every fragment must belong to a pair.
func addSharedProtoSlots(ctx context.Context, self sigclass.SelfType, crate string, out *Output) {
	logger := ctxlog.FromContext(ctx)
	implemented := out.ImplementedFragments

	for _, rule := range slotPairRules {
		_, first := implemented[rule.First]
		_, second := implemented[rule.Second]
		delete(implemented, rule.First)
		delete(implemented, rule.Second)
		if !first && !second {
			continue
		}
		out.ProtoImpls = append(out.ProtoImpls, Fragment{
			Code: jen.Qual(crate, rule.Shim).Types(self.Code()).Call(),
		})
		out.Merged = append(out.Merged, rule.Shim)
		logger.Debug("Merged slot fragments.", "rule", rule.Shim, "forward", first, "reverse", second)
	}

	if len(implemented) != 0 {
		residue := make([]string, 0, len(implemented))
		for name := range implemented {
			residue = append(residue, name)
		}
		sort.Strings(residue)
		diag.Fatalf("slot fragments %v of %s are not covered by any slot pair", residue, self)
	}
}
