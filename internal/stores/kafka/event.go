package kafka

import "time"

const (
	TopicOrderPlaced  = `order-service.order-placed`
	TopicOrderDeleted = `order-service.order-deleted`
)

// OrderPlacedEvent is emitted after an order commits, one event per order.
type OrderPlacedEvent struct {
	OrderId     string    `json:"order_id"`
	CustomerId  string    `json:"customer_id"`
	TotalAmount int64     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderDeletedEvent is emitted after an order is removed and its stock
// restored.
type OrderDeletedEvent struct {
	OrderId   string    `json:"order_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
