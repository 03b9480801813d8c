package products

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no product exists for the given id.
var ErrNotFound = errors.New("product not found")

// InsufficientStockError reports a stock mutation that would drive the
// quantity negative. It carries enough context for the caller's message.
type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s. Available: %d, Requested: %d",
		e.Name, e.Available, e.Requested)
}
