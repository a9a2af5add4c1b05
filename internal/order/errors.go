package order

import (
	"errors"
	"fmt"
)

// ErrProductNotFound marks an order line referencing an unknown product.
// It is always wrapped with the offending product id.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a line whose requested quantity exceeds the
// available stock. The order is rejected as a whole; no quantities change.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (%s): requested %d, available %d",
		e.ProductID, e.Name, e.Requested, e.Available)
}

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
