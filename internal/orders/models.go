package orders

import "time"

// Order is the persisted order graph. Items are owned exclusively by the
// order and fixed at creation; TotalAmount always equals the sum of the
// item total prices.
type Order struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customer_id"`
	TotalAmount int64       `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is one line of an order. Price is a snapshot of the product
// price at order time and never tracks later price changes;
// TotalPrice = Price * Quantity.
type OrderItem struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	TotalPrice int64  `json:"total_price"`
}

// NewOrder is the payload for placing an order.
type NewOrder struct {
	CustomerID string         `json:"customer_id" validate:"required"`
	Items      []NewOrderItem `json:"items" validate:"required,min=1,dive"`
}

// NewOrderItem is one requested line: a product and how many units of it.
type NewOrderItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// SearchFilter narrows order listing. A non-empty CustomerName takes
// priority and ignores every other field, matching first or last name of
// the order's customer as a case-insensitive substring. Otherwise the
// provided fields AND together; bounds are inclusive.
type SearchFilter struct {
	CustomerName string
	CustomerID   string
	StartDate    *time.Time
	EndDate      *time.Time
	MinAmount    *int64
	MaxAmount    *int64
}
