// Package pyrt is the binding library that code generated by pyslotgen links
// against.
//
// It defines the records a dynamic-object runtime needs to expose a Go type as
// a native object: method-table entries (MethodDefType), protocol slots
// (TypeSlot) with their calling conventions, the fragment interfaces that
// generated "trait" methods satisfy, and the merge shims that fold a forward
// and a reverse fragment into one slot.
//
// Generated code registers its tables in one of two ways. With the direct
// strategy the type itself provides PyMethods and PyMethodsProtocolSlots. With
// the deferred strategy every generated file submits an Inventory from an init
// function, and all contributions for a type are concatenated when the type is
// finalized by NewTypeSpec.
package pyrt
