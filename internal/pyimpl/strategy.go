package pyimpl

import (
	"fmt"
	"strings"
)

// RegistrationStrategy selects how generated tables reach the runtime.
type RegistrationStrategy int

const (
	// DirectOverride declares provider methods on the type. A type can then
	// have only one implementation block per package.
	DirectOverride RegistrationStrategy = iota
	// DeferredRegistry submits every implementation block as an independent
	// contribution, concatenated when the type is finalized.
	DeferredRegistry
)

var strategyNames = map[RegistrationStrategy]string{
	DirectOverride:   "direct",
	DeferredRegistry: "registry",
}

func (s RegistrationStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RegistrationStrategy(%d)", int(s))
}

// ParseStrategy parses a strategy name as written in configuration.
func ParseStrategy(name string) (RegistrationStrategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown registration strategy %q (expected \"direct\" or \"registry\")", name)
}
