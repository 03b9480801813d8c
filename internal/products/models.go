package products

import "time"

// Product carries a unit price in the smallest currency unit and the current
// stock level. StockQuantity never drops below zero; all mutations go
// through the lock-then-mutate path in guard.go.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewProduct is the payload for creating a product.
type NewProduct struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" validate:"min=0"`
	StockQuantity int    `json:"stock_quantity" validate:"min=0"`
}

// UpdateProduct replaces all mutable fields of an existing product.
type UpdateProduct struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" validate:"min=0"`
	StockQuantity int    `json:"stock_quantity" validate:"min=0"`
}

// SearchFilter narrows product listing. Nil/empty fields are no-ops;
// provided fields AND together. Price bounds are inclusive.
type SearchFilter struct {
	Name     string
	MinPrice *int64
	MaxPrice *int64
	MinStock *int
}
