package pyrt

import "fmt"

// Merge shims. Each shim yields one complete slot for a pair of fragments of
// type T, whichever halves T actually implements.
//
// Binary shims try the forward fragment when the left operand is a T. If it is
// missing or reports NotImplemented, the reverse fragment is tried with the
// operands swapped when the right operand is a T. If neither applies the slot
// reports NotImplemented.

type binaryMethod func(other Object) (Object, error)

type ternaryMethod func(other, mod Object) (Object, error)

func binaryHalf[F any](m func(F, Object) (Object, error)) func(Object) (binaryMethod, bool) {
	return func(self Object) (binaryMethod, bool) {
		f, ok := self.(F)
		if !ok {
			return nil, false
		}
		return func(other Object) (Object, error) { return m(f, other) }, true
	}
}

func ternaryHalf[F any](m func(F, Object, Object) (Object, error)) func(Object) (ternaryMethod, bool) {
	return func(self Object) (ternaryMethod, bool) {
		f, ok := self.(F)
		if !ok {
			return nil, false
		}
		return func(other, mod Object) (Object, error) { return m(f, other, mod) }, true
	}
}

func binaryShim[T any](id SlotID, forward, reverse func(Object) (binaryMethod, bool)) TypeSlot {
	fn := func(lhs, rhs Object) (Object, error) {
		if _, ok := lhs.(T); ok {
			if call, ok := forward(lhs); ok {
				res, err := call(rhs)
				if err != nil || !IsNotImplemented(res) {
					return res, err
				}
			}
		}
		if _, ok := rhs.(T); ok {
			if call, ok := reverse(rhs); ok {
				return call(lhs)
			}
		}
		return NotImplemented, nil
	}
	return TypeSlot{ID: id, Func: BinaryFunc(fn), Merged: true}
}

func setDelete[T, S, D any](self, value Object, set func(S) error, del func(D) error) error {
	if _, ok := self.(T); !ok {
		return fmt.Errorf("%w: unexpected receiver %T", ErrNotSupported, self)
	}
	if value == nil {
		if d, ok := self.(D); ok {
			return del(d)
		}
		return ErrNotSupported
	}
	if s, ok := self.(S); ok {
		return set(s)
	}
	return ErrNotSupported
}

// SetattrSlot merges __setattr__ and __delattr__. A nil value deletes.
func SetattrSlot[T any]() TypeSlot {
	fn := func(self, name, value Object) error {
		return setDelete[T](self, value,
			func(s SetattrFragment) error { return s.PySetattr(name, value) },
			func(d DelattrFragment) error { return d.PyDelattr(name) },
		)
	}
	return TypeSlot{ID: SlotTpSetattro, Func: SetAttrFunc(fn), Merged: true}
}

// SetdescrSlot merges __set__ and __delete__. A nil value deletes.
func SetdescrSlot[T any]() TypeSlot {
	fn := func(self, obj, value Object) error {
		return setDelete[T](self, value,
			func(s SetFragment) error { return s.PySet(obj, value) },
			func(d DeleteFragment) error { return d.PyDelete(obj) },
		)
	}
	return TypeSlot{ID: SlotTpDescrSet, Func: DescrSetFunc(fn), Merged: true}
}

// SetitemSlot merges __setitem__ and __delitem__. A nil value deletes.
func SetitemSlot[T any]() TypeSlot {
	fn := func(self, key, value Object) error {
		return setDelete[T](self, value,
			func(s SetitemFragment) error { return s.PySetitem(key, value) },
			func(d DelitemFragment) error { return d.PyDelitem(key) },
		)
	}
	return TypeSlot{ID: SlotMpAssSubscript, Func: AssSubscriptFunc(fn), Merged: true}
}

func AddSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbAdd, binaryHalf(AddFragment.PyAdd), binaryHalf(RAddFragment.PyRAdd))
}

func SubSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbSubtract, binaryHalf(SubFragment.PySub), binaryHalf(RSubFragment.PyRSub))
}

func MulSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbMultiply, binaryHalf(MulFragment.PyMul), binaryHalf(RMulFragment.PyRMul))
}

func ModSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbRemainder, binaryHalf(ModFragment.PyMod), binaryHalf(RModFragment.PyRMod))
}

func DivmodSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbDivmod, binaryHalf(DivmodFragment.PyDivmod), binaryHalf(RDivmodFragment.PyRDivmod))
}

func LshiftSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbLshift, binaryHalf(LshiftFragment.PyLshift), binaryHalf(RLshiftFragment.PyRLshift))
}

func RshiftSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbRshift, binaryHalf(RshiftFragment.PyRshift), binaryHalf(RRshiftFragment.PyRRshift))
}

func AndSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbAnd, binaryHalf(AndFragment.PyAnd), binaryHalf(RAndFragment.PyRAnd))
}

func OrSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbOr, binaryHalf(OrFragment.PyOr), binaryHalf(ROrFragment.PyROr))
}

func XorSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbXor, binaryHalf(XorFragment.PyXor), binaryHalf(RXorFragment.PyRXor))
}

func MatmulSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbMatrixMultiply, binaryHalf(MatmulFragment.PyMatmul), binaryHalf(RMatmulFragment.PyRMatmul))
}

func TruedivSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbTrueDivide, binaryHalf(TruedivFragment.PyTruediv), binaryHalf(RTruedivFragment.PyRTruediv))
}

func FloordivSlot[T any]() TypeSlot {
	return binaryShim[T](SlotNbFloorDivide, binaryHalf(FloordivFragment.PyFloordiv), binaryHalf(RFloordivFragment.PyRFloordiv))
}

// PowSlot merges __pow__ and __rpow__; the modulo operand is passed to
// whichever half runs.
func PowSlot[T any]() TypeSlot {
	forward := ternaryHalf(PowFragment.PyPow)
	reverse := ternaryHalf(RPowFragment.PyRPow)
	fn := func(lhs, rhs, mod Object) (Object, error) {
		if _, ok := lhs.(T); ok {
			if call, ok := forward(lhs); ok {
				res, err := call(rhs, mod)
				if err != nil || !IsNotImplemented(res) {
					return res, err
				}
			}
		}
		if _, ok := rhs.(T); ok {
			if call, ok := reverse(rhs); ok {
				return call(lhs, mod)
			}
		}
		return NotImplemented, nil
	}
	return TypeSlot{ID: SlotNbPower, Func: TernaryFunc(fn), Merged: true}
}
