package pyrt

import "errors"

// Object is any value crossing the runtime boundary.
type Object = any

type notImplemented struct{}

func (notImplemented) String() string { return "NotImplemented" }

// NotImplemented is the sentinel a binary operation returns when it does not
// support the operand types it was given.
var NotImplemented Object = notImplemented{}

// IsNotImplemented reports whether o is the NotImplemented sentinel.
func IsNotImplemented(o Object) bool {
	_, ok := o.(notImplemented)
	return ok
}

// ErrNotSupported is returned by set/delete slots when the type implements
// only the other half of the pair.
var ErrNotSupported = errors.New("pyrt: operation not supported")

// CompareOp selects the comparison performed by a rich-compare slot.
type CompareOp uint8

const (
	CompareLt CompareOp = iota
	CompareLe
	CompareEq
	CompareNe
	CompareGt
	CompareGe
)

var compareOpNames = [...]string{
	CompareLt: "<",
	CompareLe: "<=",
	CompareEq: "==",
	CompareNe: "!=",
	CompareGt: ">",
	CompareGe: ">=",
}

func (op CompareOp) String() string {
	if int(op) < len(compareOpNames) {
		return compareOpNames[op]
	}
	return "?"
}
