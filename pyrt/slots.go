package pyrt

import "fmt"

// SlotID identifies an entry of the runtime's per-type slot structure.
type SlotID uint16

const (
	SlotTpRepr SlotID = iota + 1
	SlotTpStr
	SlotTpHash
	SlotTpRichcompare
	SlotTpIter
	SlotTpIternext
	SlotTpCall
	SlotTpGetattro
	SlotTpSetattro
	SlotTpDescrGet
	SlotTpDescrSet
	SlotMpLength
	SlotMpSubscript
	SlotMpAssSubscript
	SlotSqContains
	SlotNbBool
	SlotNbInt
	SlotNbFloat
	SlotNbIndex
	SlotNbNegative
	SlotNbPositive
	SlotNbAbsolute
	SlotNbInvert
	SlotNbAdd
	SlotNbSubtract
	SlotNbMultiply
	SlotNbRemainder
	SlotNbDivmod
	SlotNbLshift
	SlotNbRshift
	SlotNbAnd
	SlotNbOr
	SlotNbXor
	SlotNbMatrixMultiply
	SlotNbTrueDivide
	SlotNbFloorDivide
	SlotNbPower
	SlotNbInplaceAdd
	SlotNbInplaceSubtract
	SlotNbInplaceMultiply
	SlotNbInplaceRemainder
	SlotNbInplaceLshift
	SlotNbInplaceRshift
	SlotNbInplaceAnd
	SlotNbInplaceOr
	SlotNbInplaceXor
	SlotNbInplaceMatrixMultiply
	SlotNbInplaceTrueDivide
	SlotNbInplaceFloorDivide
	SlotNbInplacePower
	SlotAmAwait
	SlotAmAiter
	SlotAmAnext
)

var slotNames = map[SlotID]string{
	SlotTpRepr:                  "tp_repr",
	SlotTpStr:                   "tp_str",
	SlotTpHash:                  "tp_hash",
	SlotTpRichcompare:           "tp_richcompare",
	SlotTpIter:                  "tp_iter",
	SlotTpIternext:              "tp_iternext",
	SlotTpCall:                  "tp_call",
	SlotTpGetattro:              "tp_getattro",
	SlotTpSetattro:              "tp_setattro",
	SlotTpDescrGet:              "tp_descr_get",
	SlotTpDescrSet:              "tp_descr_set",
	SlotMpLength:                "mp_length",
	SlotMpSubscript:             "mp_subscript",
	SlotMpAssSubscript:          "mp_ass_subscript",
	SlotSqContains:              "sq_contains",
	SlotNbBool:                  "nb_bool",
	SlotNbInt:                   "nb_int",
	SlotNbFloat:                 "nb_float",
	SlotNbIndex:                 "nb_index",
	SlotNbNegative:              "nb_negative",
	SlotNbPositive:              "nb_positive",
	SlotNbAbsolute:              "nb_absolute",
	SlotNbInvert:                "nb_invert",
	SlotNbAdd:                   "nb_add",
	SlotNbSubtract:              "nb_subtract",
	SlotNbMultiply:              "nb_multiply",
	SlotNbRemainder:             "nb_remainder",
	SlotNbDivmod:                "nb_divmod",
	SlotNbLshift:                "nb_lshift",
	SlotNbRshift:                "nb_rshift",
	SlotNbAnd:                   "nb_and",
	SlotNbOr:                    "nb_or",
	SlotNbXor:                   "nb_xor",
	SlotNbMatrixMultiply:        "nb_matrix_multiply",
	SlotNbTrueDivide:            "nb_true_divide",
	SlotNbFloorDivide:           "nb_floor_divide",
	SlotNbPower:                 "nb_power",
	SlotNbInplaceAdd:            "nb_inplace_add",
	SlotNbInplaceSubtract:       "nb_inplace_subtract",
	SlotNbInplaceMultiply:       "nb_inplace_multiply",
	SlotNbInplaceRemainder:      "nb_inplace_remainder",
	SlotNbInplaceLshift:         "nb_inplace_lshift",
	SlotNbInplaceRshift:         "nb_inplace_rshift",
	SlotNbInplaceAnd:            "nb_inplace_and",
	SlotNbInplaceOr:             "nb_inplace_or",
	SlotNbInplaceXor:            "nb_inplace_xor",
	SlotNbInplaceMatrixMultiply: "nb_inplace_matrix_multiply",
	SlotNbInplaceTrueDivide:     "nb_inplace_true_divide",
	SlotNbInplaceFloorDivide:    "nb_inplace_floor_divide",
	SlotNbInplacePower:          "nb_inplace_power",
	SlotAmAwait:                 "am_await",
	SlotAmAiter:                 "am_aiter",
	SlotAmAnext:                 "am_anext",
}

func (id SlotID) String() string {
	if name, ok := slotNames[id]; ok {
		return name
	}
	return fmt.Sprintf("slot(%d)", uint16(id))
}

// TypeSlot is one entry of a type's slot table. Func holds a value of one of
// the calling-convention types below, matching the slot id.
type TypeSlot struct {
	ID   SlotID
	Func any

	// Merged marks slots built by a merge shim. Two merged slots with the same
	// id for the same type behave identically, so the aggregation keeps one.
	Merged bool
}

// Calling conventions of slot functions.
type (
	UnaryFunc        func(self Object) (Object, error)
	BinaryFunc       func(self, other Object) (Object, error)
	TernaryFunc      func(self, other, mod Object) (Object, error)
	ReprFunc         func(self Object) (string, error)
	HashFunc         func(self Object) (int64, error)
	LenFunc          func(self Object) (int, error)
	InquiryFunc      func(self Object) (bool, error)
	ContainsFunc     func(self, item Object) (bool, error)
	RichCmpFunc      func(self, other Object, op CompareOp) (Object, error)
	DescrGetFunc     func(self, obj, owner Object) (Object, error)
	CallFunc         func(self Object, args []Object, kwargs map[string]Object) (Object, error)
	SetAttrFunc      func(self, name, value Object) error
	DescrSetFunc     func(self, obj, value Object) error
	AssSubscriptFunc func(self, key, value Object) error
)
