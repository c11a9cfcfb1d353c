// Package protocol knows the reserved protocol names: which of them map to a
// complete runtime slot, which are one half of a merged slot, and the calling
// convention the bound Go method must follow for each.
package protocol

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Param is one parameter of a calling convention, after the receiver.
type Param struct {
	Name string
	// Type names a pyrt type, "Object" or "CompareOp".
	Type string
}

// Convention describes the Go signature of a slot function.
type Convention struct {
	// FuncType is the pyrt type the slot function is converted to. It is
	// empty for fragments, which are plain methods.
	FuncType string
	Params   []Param
	// Result is the non-error result: a pyrt type name, a builtin type name,
	// or empty when the function returns only an error.
	Result string
}

// PyrtResult reports whether Result names a pyrt type.
func (c Convention) PyrtResult() bool {
	return c.Result == "Object"
}

var (
	objectParam = func(name string) Param { return Param{Name: name, Type: "Object"} }

	unary       = Convention{FuncType: "UnaryFunc", Result: "Object"}
	binary      = Convention{FuncType: "BinaryFunc", Params: []Param{objectParam("other")}, Result: "Object"}
	ternary     = Convention{FuncType: "TernaryFunc", Params: []Param{objectParam("other"), objectParam("mod")}, Result: "Object"}
	reprConv    = Convention{FuncType: "ReprFunc", Result: "string"}
	hashConv    = Convention{FuncType: "HashFunc", Result: "int64"}
	lenConv     = Convention{FuncType: "LenFunc", Result: "int"}
	inquiry     = Convention{FuncType: "InquiryFunc", Result: "bool"}
	contains    = Convention{FuncType: "ContainsFunc", Params: []Param{objectParam("item")}, Result: "bool"}
	richcmp     = Convention{FuncType: "RichCmpFunc", Params: []Param{objectParam("other"), {Name: "op", Type: "CompareOp"}}, Result: "Object"}
	getattr     = Convention{FuncType: "BinaryFunc", Params: []Param{objectParam("name")}, Result: "Object"}
	getitem     = Convention{FuncType: "BinaryFunc", Params: []Param{objectParam("key")}, Result: "Object"}
	descrGet    = Convention{FuncType: "DescrGetFunc", Params: []Param{objectParam("obj"), objectParam("owner")}, Result: "Object"}
	fragBinary  = Convention{Params: []Param{objectParam("other")}, Result: "Object"}
	fragTernary = Convention{Params: []Param{objectParam("other"), objectParam("mod")}, Result: "Object"}
	fragSetPair = func(key string) Convention { return Convention{Params: []Param{objectParam(key), objectParam("value")}} }
	fragDelPair = func(key string) Convention { return Convention{Params: []Param{objectParam(key)}} }
)

// Slot is a protocol name implemented by one complete runtime slot.
type Slot struct {
	Name string
	// SlotID is the name of the pyrt SlotID constant.
	SlotID     string
	Convention Convention
}

// Fragment is a protocol name implemented by one half of a merged slot.
type Fragment struct {
	Name string
	// Method is the name of the fragment interface method generated code
	// declares on the type.
	Method     string
	Convention Convention
}

var slots = map[string]Slot{}

func slot(name, id string, c Convention) {
	slots[name] = Slot{Name: name, SlotID: id, Convention: c}
}

func init() {
	slot("__repr__", "SlotTpRepr", reprConv)
	slot("__str__", "SlotTpStr", reprConv)
	slot("__hash__", "SlotTpHash", hashConv)
	slot("__richcmp__", "SlotTpRichcompare", richcmp)
	slot("__iter__", "SlotTpIter", unary)
	slot("__next__", "SlotTpIternext", unary)
	slot("__getattr__", "SlotTpGetattro", getattr)
	slot("__get__", "SlotTpDescrGet", descrGet)
	slot("__len__", "SlotMpLength", lenConv)
	slot("__getitem__", "SlotMpSubscript", getitem)
	slot("__contains__", "SlotSqContains", contains)
	slot("__bool__", "SlotNbBool", inquiry)
	slot("__int__", "SlotNbInt", unary)
	slot("__float__", "SlotNbFloat", unary)
	slot("__index__", "SlotNbIndex", unary)
	slot("__neg__", "SlotNbNegative", unary)
	slot("__pos__", "SlotNbPositive", unary)
	slot("__abs__", "SlotNbAbsolute", unary)
	slot("__invert__", "SlotNbInvert", unary)
	slot("__iadd__", "SlotNbInplaceAdd", binary)
	slot("__isub__", "SlotNbInplaceSubtract", binary)
	slot("__imul__", "SlotNbInplaceMultiply", binary)
	slot("__imod__", "SlotNbInplaceRemainder", binary)
	slot("__ilshift__", "SlotNbInplaceLshift", binary)
	slot("__irshift__", "SlotNbInplaceRshift", binary)
	slot("__iand__", "SlotNbInplaceAnd", binary)
	slot("__ior__", "SlotNbInplaceOr", binary)
	slot("__ixor__", "SlotNbInplaceXor", binary)
	slot("__imatmul__", "SlotNbInplaceMatrixMultiply", binary)
	slot("__itruediv__", "SlotNbInplaceTrueDivide", binary)
	slot("__ifloordiv__", "SlotNbInplaceFloorDivide", binary)
	slot("__ipow__", "SlotNbInplacePower", ternary)
	slot("__await__", "SlotAmAwait", unary)
	slot("__aiter__", "SlotAmAiter", unary)
	slot("__anext__", "SlotAmAnext", unary)
}

var fragments = map[string]Fragment{
	"__setattr__": {Name: "__setattr__", Method: "PySetattr", Convention: fragSetPair("name")},
	"__delattr__": {Name: "__delattr__", Method: "PyDelattr", Convention: fragDelPair("name")},
	"__set__":     {Name: "__set__", Method: "PySet", Convention: fragSetPair("obj")},
	"__delete__":  {Name: "__delete__", Method: "PyDelete", Convention: fragDelPair("obj")},
	"__setitem__": {Name: "__setitem__", Method: "PySetitem", Convention: fragSetPair("key")},
	"__delitem__": {Name: "__delitem__", Method: "PyDelitem", Convention: fragDelPair("key")},
	"__pow__":     {Name: "__pow__", Method: "PyPow", Convention: fragTernary},
	"__rpow__":    {Name: "__rpow__", Method: "PyRPow", Convention: fragTernary},
}

// binaryOperators are the forward/reverse operator pairs sharing the binary
// fragment convention, keyed by their bare name.
var binaryOperators = map[string]string{
	"add":      "Add",
	"sub":      "Sub",
	"mul":      "Mul",
	"mod":      "Mod",
	"divmod":   "Divmod",
	"lshift":   "Lshift",
	"rshift":   "Rshift",
	"and":      "And",
	"or":       "Or",
	"xor":      "Xor",
	"matmul":   "Matmul",
	"truediv":  "Truediv",
	"floordiv": "Floordiv",
}

func init() {
	for op, method := range binaryOperators {
		forward := "__" + op + "__"
		reverse := "__r" + op + "__"
		fragments[forward] = Fragment{Name: forward, Method: "Py" + method, Convention: fragBinary}
		fragments[reverse] = Fragment{Name: reverse, Method: "PyR" + method, Convention: fragBinary}
	}
}

// Special names handled outside the slot tables.
const (
	CallName = "__call__"
	NewName  = "__new__"
)

// Lookup returns the complete slot implementing name.
func Lookup(name string) (Slot, bool) {
	s, ok := slots[name]
	return s, ok
}

// LookupFragment returns the merged-slot half implementing name.
func LookupFragment(name string) (Fragment, bool) {
	f, ok := fragments[name]
	return f, ok
}

// IsFragment reports whether name is one half of a merged slot.
func IsFragment(name string) bool {
	_, ok := fragments[name]
	return ok
}

// IsProtoMethod reports whether name is a reserved protocol name.
func IsProtoMethod(name string) bool {
	if _, ok := slots[name]; ok {
		return true
	}
	return IsFragment(name) || name == CallName
}

// IsDunder reports whether name is written in the reserved `__name__` form.
func IsDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// Names returns every reserved protocol name, sorted.
func Names() []string {
	names := make([]string, 0, len(slots)+len(fragments)+1)
	for n := range slots {
		names = append(names, n)
	}
	for n := range fragments {
		names = append(names, n)
	}
	names = append(names, CallName)
	sort.Strings(names)
	return names
}

// Suggest returns the reserved name closest to an unknown dunder name, if one
// is close enough to be a likely typo.
func Suggest(name string) (string, bool) {
	best, bestDist := "", 3
	for _, candidate := range Names() {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}
