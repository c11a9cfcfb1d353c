package pyrt

import (
	"log/slog"
	"reflect"
	"sync"
)

// Inventory is one contribution of generated code to a type's tables.
type Inventory struct {
	Methods []MethodDefType
	Slots   []TypeSlot
}

// Registry collects inventories keyed by the Go type they belong to. Generated
// code submits to the default registry from init functions; NewTypeSpec reads
// the contributions back when the type is finalized.
type Registry struct {
	mu            sync.Mutex
	contributions map[reflect.Type][]Inventory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{contributions: make(map[reflect.Type][]Inventory)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by generated code.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// TypeOf returns the reflect.Type used as registry key for T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Submit adds a contribution for T to the default registry.
func Submit[T any](inv Inventory) {
	defaultRegistry.Submit(TypeOf[T](), inv)
}

// Submit adds a contribution for t. Contributions are kept in submission order.
func (r *Registry) Submit(t reflect.Type, inv Inventory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slog.Debug("Submitting inventory.", "type", t.String(), "methods", len(inv.Methods), "slots", len(inv.Slots))
	r.contributions[t] = append(r.contributions[t], inv)
}

// Contributions returns a copy of every inventory submitted for t.
func (r *Registry) Contributions(t reflect.Type) []Inventory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Inventory, len(r.contributions[t]))
	copy(out, r.contributions[t])
	return out
}

// Reset drops every contribution. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributions = make(map[reflect.Type][]Inventory)
}
