package product

import "fmt"

// ValidationError reports malformed or out-of-range input. It is surfaced
// to the caller immediately; nothing is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validatePage(p Page) error {
	if p.Limit < 0 {
		return &ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if p.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	return nil
}
