package pyrt

// Fragment interfaces. Generated code satisfies one of these for every half of
// a set/delete pair or of a forward/reverse operator pair a type implements;
// the merge shims find the halves through type assertions.

type SetattrFragment interface {
	PySetattr(name, value Object) error
}

type DelattrFragment interface {
	PyDelattr(name Object) error
}

type SetFragment interface {
	PySet(obj, value Object) error
}

type DeleteFragment interface {
	PyDelete(obj Object) error
}

type SetitemFragment interface {
	PySetitem(key, value Object) error
}

type DelitemFragment interface {
	PyDelitem(key Object) error
}

type AddFragment interface {
	PyAdd(other Object) (Object, error)
}

type RAddFragment interface {
	PyRAdd(other Object) (Object, error)
}

type SubFragment interface {
	PySub(other Object) (Object, error)
}

type RSubFragment interface {
	PyRSub(other Object) (Object, error)
}

type MulFragment interface {
	PyMul(other Object) (Object, error)
}

type RMulFragment interface {
	PyRMul(other Object) (Object, error)
}

type ModFragment interface {
	PyMod(other Object) (Object, error)
}

type RModFragment interface {
	PyRMod(other Object) (Object, error)
}

type DivmodFragment interface {
	PyDivmod(other Object) (Object, error)
}

type RDivmodFragment interface {
	PyRDivmod(other Object) (Object, error)
}

type LshiftFragment interface {
	PyLshift(other Object) (Object, error)
}

type RLshiftFragment interface {
	PyRLshift(other Object) (Object, error)
}

type RshiftFragment interface {
	PyRshift(other Object) (Object, error)
}

type RRshiftFragment interface {
	PyRRshift(other Object) (Object, error)
}

type AndFragment interface {
	PyAnd(other Object) (Object, error)
}

type RAndFragment interface {
	PyRAnd(other Object) (Object, error)
}

type OrFragment interface {
	PyOr(other Object) (Object, error)
}

type ROrFragment interface {
	PyROr(other Object) (Object, error)
}

type XorFragment interface {
	PyXor(other Object) (Object, error)
}

type RXorFragment interface {
	PyRXor(other Object) (Object, error)
}

type MatmulFragment interface {
	PyMatmul(other Object) (Object, error)
}

type RMatmulFragment interface {
	PyRMatmul(other Object) (Object, error)
}

type TruedivFragment interface {
	PyTruediv(other Object) (Object, error)
}

type RTruedivFragment interface {
	PyRTruediv(other Object) (Object, error)
}

type FloordivFragment interface {
	PyFloordiv(other Object) (Object, error)
}

type RFloordivFragment interface {
	PyRFloordiv(other Object) (Object, error)
}

type PowFragment interface {
	PyPow(other, mod Object) (Object, error)
}

type RPowFragment interface {
	PyRPow(other, mod Object) (Object, error)
}
