package pyrt

import (
	"log/slog"
	"sync"
)

var warnedDeprecations sync.Map

// WarnDeprecated logs a deprecation warning the first time name is accessed.
func WarnDeprecated(name, note string) {
	if _, loaded := warnedDeprecations.LoadOrStore(name, struct{}{}); loaded {
		return
	}
	slog.Warn("Deprecated attribute accessed.", "name", name, "note", note)
}
