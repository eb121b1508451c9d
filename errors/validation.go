package errors

import (
	// Go Internal Packages
	"fmt"
	"strings"
)

// ValidationErrors collects per-field validation failures so a caller
// can report all of them at once instead of failing on the first.
type ValidationErrors struct {
	fields []string
}

func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a failure for the given field.
func (v *ValidationErrors) Add(field, msg string) {
	v.fields = append(v.fields, fmt.Sprintf("%s: %s", field, msg))
}

// Err returns nil when no failures were recorded, otherwise an Invalid error
// listing every recorded field failure.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return E(Invalid, strings.Join(v.fields, "; "), nil)
}
