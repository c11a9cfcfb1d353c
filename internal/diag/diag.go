// Package diag defines the two failure kinds of the generator.
//
// A UserConfigError is caused by the manifest: it carries HCL diagnostics
// with source ranges, aborts the one implementation block being expanded and
// leaves sibling blocks alone. An InternalConsistencyError is a defect of the
// generator itself; it is never returned, only raised with Fatalf, and is
// recovered at the process boundary.
package diag

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// UserConfigError reports invalid input shape or configuration.
type UserConfigError struct {
	Diags hcl.Diagnostics
}

func (e *UserConfigError) Error() string {
	return e.Diags.Error()
}

func (e *UserConfigError) Unwrap() error {
	return e.Diags
}

// Spanned builds a UserConfigError pointing at rng.
func Spanned(rng hcl.Range, summary, detail string) *UserConfigError {
	return &UserConfigError{Diags: hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}}
}

// FromDiagnostics wraps diags into a UserConfigError when they contain an
// error, and returns nil otherwise.
func FromDiagnostics(diags hcl.Diagnostics) error {
	if !diags.HasErrors() {
		return nil
	}
	return &UserConfigError{Diags: diags}
}

// Warning builds a warning diagnostic pointing at rng.
func Warning(rng hcl.Range, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}

// InternalConsistencyError means the classifier and the fixed tables of the
// generator disagree with each other.
type InternalConsistencyError struct {
	Msg string
}

func (e *InternalConsistencyError) Error() string {
	return "internal consistency error: " + e.Msg
}

// Fatalf aborts unconditionally with an InternalConsistencyError.
func Fatalf(format string, args ...any) {
	panic(&InternalConsistencyError{Msg: fmt.Sprintf(format, args...)})
}

// AsInternal converts a recovered panic value into an InternalConsistencyError.
func AsInternal(r any) (*InternalConsistencyError, bool) {
	e, ok := r.(*InternalConsistencyError)
	return e, ok
}
