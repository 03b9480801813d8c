package orders

import "errors"

var (
	// ErrNotFound reports that no order exists for the given id.
	ErrNotFound = errors.New("order not found")

	// ErrCustomerNotFound reports that the order references a customer
	// that does not exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoItems rejects an order without at least one line item.
	ErrNoItems = errors.New("order must contain at least one item")
)
