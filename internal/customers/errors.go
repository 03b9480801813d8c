package customers

import "errors"

var (
	// ErrNotFound reports that no customer exists for the given id or email.
	ErrNotFound = errors.New("customer not found")

	// ErrEmailExists reports that another customer already registered the email.
	ErrEmailExists = errors.New("email already exists")

	// ErrHasOrders blocks deletion of a customer that orders still reference.
	ErrHasOrders = errors.New("customer has existing orders")
)
