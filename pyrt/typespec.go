package pyrt

import (
	"fmt"
	"strings"
)

// Providers implemented by generated code.
type (
	// MethodsProvider is implemented by the direct registration strategy.
	MethodsProvider interface {
		PyMethods() []MethodDefType
	}

	// ProtocolSlotsProvider is implemented by the direct registration strategy.
	ProtocolSlotsProvider interface {
		PyMethodsProtocolSlots() []TypeSlot
	}

	// DefaultSlotsProvider supplies library fallbacks used only when no
	// user slot has the same id.
	DefaultSlotsProvider interface {
		PyClassDefaultSlots() []TypeSlot
	}

	// Callable is implemented for types with a __call__ binding.
	Callable interface {
		PyCall(args []Object, kwargs map[string]Object) (Object, error)
	}

	// Constructor is implemented for types with a constructor binding.
	Constructor interface {
		PyNew(args []Object, kwargs map[string]Object) (Object, error)
	}
)

// TypeSpec is the finalized description of a type, ready to be turned into a
// runtime type object.
type TypeSpec struct {
	Name    string
	Methods []MethodDefType
	Slots   []TypeSlot
	New     func(args []Object, kwargs map[string]Object) (Object, error)
}

// Slot returns the slot with the given id.
func (s *TypeSpec) Slot(id SlotID) (TypeSlot, bool) {
	for _, slot := range s.Slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return TypeSlot{}, false
}

// Method returns the method table entry with the given name.
func (s *TypeSpec) Method(name string) (MethodDefType, bool) {
	for _, m := range s.Methods {
		if m.Name() == name {
			return m, true
		}
	}
	return MethodDefType{}, false
}

// NewTypeSpec finalizes T against the default registry.
func NewTypeSpec[T any]() (*TypeSpec, error) {
	return BuildTypeSpec[T](defaultRegistry)
}

// BuildTypeSpec aggregates everything known about T: the direct providers,
// every inventory submitted to reg, the callable and constructor bindings,
// and finally the default slots not overridden by a user slot.
func BuildTypeSpec[T any](reg *Registry) (*TypeSpec, error) {
	t := TypeOf[T]()
	spec := &TypeSpec{Name: strings.TrimPrefix(t.String(), "*")}

	var zero T
	witness := any(zero)

	if p, ok := witness.(MethodsProvider); ok {
		spec.Methods = append(spec.Methods, p.PyMethods()...)
	}
	var slots []TypeSlot
	if p, ok := witness.(ProtocolSlotsProvider); ok {
		slots = append(slots, p.PyMethodsProtocolSlots()...)
	}
	for _, inv := range reg.Contributions(t) {
		spec.Methods = append(spec.Methods, inv.Methods...)
		slots = append(slots, inv.Slots...)
	}
	if _, ok := witness.(Callable); ok {
		call := func(self Object, args []Object, kwargs map[string]Object) (Object, error) {
			c, ok := self.(Callable)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not callable", ErrNotSupported, self)
			}
			return c.PyCall(args, kwargs)
		}
		slots = append(slots, TypeSlot{ID: SlotTpCall, Func: CallFunc(call)})
	}
	if c, ok := witness.(Constructor); ok {
		spec.New = c.PyNew
	}

	seen := make(map[SlotID]TypeSlot, len(slots))
	for _, slot := range slots {
		if prev, dup := seen[slot.ID]; dup {
			if prev.Merged && slot.Merged {
				continue
			}
			return nil, fmt.Errorf("type %s: slot %s defined more than once", spec.Name, slot.ID)
		}
		seen[slot.ID] = slot
		spec.Slots = append(spec.Slots, slot)
	}

	if p, ok := witness.(DefaultSlotsProvider); ok {
		for _, slot := range p.PyClassDefaultSlots() {
			if _, overridden := seen[slot.ID]; overridden {
				continue
			}
			seen[slot.ID] = slot
			spec.Slots = append(spec.Slots, slot)
		}
	}
	return spec, nil
}
