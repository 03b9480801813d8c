package customers

import "time"

// Customer is a registered buyer. ID, Email uniqueness and CreatedAt are
// enforced by the service; CreatedAt never changes after insert.
type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomer is the payload for creating a customer.
type NewCustomer struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// UpdateCustomer replaces all mutable fields of an existing customer.
type UpdateCustomer struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// SearchFilter narrows customer listing. Zero-valued fields are no-ops;
// provided fields AND together. Name matches first or last name as a
// case-insensitive substring, Email matches exactly, Phone as a substring.
type SearchFilter struct {
	Name  string
	Email string
	Phone string
}
