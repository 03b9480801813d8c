// Package orders implements the order workflow: placing an order reserves
// stock for every line inside one transaction, deleting an order restores
// it. Stock can never be oversold under concurrent requests because every
// mutation goes through the product row lock.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"order-management-service/internal/products"

	"github.com/google/uuid"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// CreateOrder places an order atomically: it validates the customer, locks
// and decrements stock for every line item, snapshots unit prices, and
// persists the order graph. Any failure rolls back every stock decrement
// already applied in this call.
func (c *Conf) CreateOrder(ctx context.Context, no NewOrder) (Order, error) {
	if len(no.Items) == 0 {
		return Order{}, ErrNoItems
	}

	order := Order{
		ID:         uuid.NewString(),
		CustomerID: no.CustomerID,
		CreatedAt:  time.Now().UTC(),
		Items:      make([]OrderItem, len(no.Items)),
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, no.CustomerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check customer: %w", err)
		}
		if !exists {
			return ErrCustomerNotFound
		}

		// Locks are taken in ascending product-id order regardless of how
		// the caller listed the items, so two concurrent multi-item orders
		// can never hold the same two locks in reverse order.
		for _, i := range lockOrderOf(no.Items) {
			line := no.Items[i]

			product, err := products.AcquireForUpdate(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if err := products.DecrementStock(ctx, tx, &product, line.Quantity); err != nil {
				return err
			}

			item := OrderItem{
				ID:         uuid.NewString(),
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				Price:      product.Price,
				TotalPrice: product.Price * int64(line.Quantity),
			}
			order.Items[i] = item
			order.TotalAmount += item.TotalPrice
		}

		insertOrder := `
			INSERT INTO orders (id, customer_id, total_amount, created_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, insertOrder, order.ID, order.CustomerID, order.TotalAmount, order.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		insertItem := `
			INSERT INTO order_items (id, order_id, product_id, quantity, price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, insertItem, item.ID, order.ID, item.ProductID,
				item.Quantity, item.Price, item.TotalPrice); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// DeleteOrderByID removes an order and restores the reserved stock of every
// line item. If any restoration fails the whole delete rolls back, so no
// order disappears while leaving inventory inconsistent.
func (c *Conf) DeleteOrderByID(ctx context.Context, id string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		// Locking the order row serializes concurrent deletes of the same
		// order; the loser sees it gone and fails with ErrNotFound.
		var orderID string
		err := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		items, err := queryItems(ctx, tx, id)
		if err != nil {
			return err
		}

		restoreLines := make([]NewOrderItem, len(items))
		for i, item := range items {
			restoreLines[i] = NewOrderItem{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		for _, i := range lockOrderOf(restoreLines) {
			line := restoreLines[i]
			product, err := products.AcquireForUpdate(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if err := products.IncrementStock(ctx, tx, &product, line.Quantity); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

// GetOrderByID fetches one order with its items or ErrNotFound.
func (c *Conf) GetOrderByID(ctx context.Context, id string) (Order, error) {
	query := `SELECT id, customer_id, total_amount, created_at FROM orders WHERE id = $1`
	var o Order
	err := c.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	o.Items, err = queryItems(ctx, c.db, id)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListOrders returns every order with its items.
func (c *Conf) ListOrders(ctx context.Context) ([]Order, error) {
	return c.queryOrders(ctx, `SELECT id, customer_id, total_amount, created_at FROM orders ORDER BY created_at`, nil)
}

// ListOrdersByCustomerID returns all orders of one customer.
func (c *Conf) ListOrdersByCustomerID(ctx context.Context, customerID string) ([]Order, error) {
	query := `SELECT id, customer_id, total_amount, created_at FROM orders WHERE customer_id = $1 ORDER BY created_at`
	return c.queryOrders(ctx, query, []any{customerID})
}

// SearchOrders lists orders matching the filter. A customer-name filter
// short-circuits and ignores all other filters, the way the search has
// always behaved.
func (c *Conf) SearchOrders(ctx context.Context, filter SearchFilter) ([]Order, error) {
	if filter.CustomerName != "" {
		query := `
			SELECT o.id, o.customer_id, o.total_amount, o.created_at
			FROM orders o
			JOIN customers cu ON cu.id = o.customer_id
			WHERE LOWER(cu.first_name) LIKE $1 OR LOWER(cu.last_name) LIKE $1
			ORDER BY o.created_at
		`
		return c.queryOrders(ctx, query, []any{"%" + strings.ToLower(filter.CustomerName) + "%"})
	}

	where, args := filter.whereClause()
	query := `SELECT id, customer_id, total_amount, created_at FROM orders` + where + ` ORDER BY created_at`
	return c.queryOrders(ctx, query, args)
}

// whereClause translates the generic-path filter fields into AND-combined
// conditions. CustomerName is handled by SearchOrders and ignored here.
func (f SearchFilter) whereClause() (string, []any) {
	var conds []string
	var args []any

	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if f.MinAmount != nil {
		args = append(args, *f.MinAmount)
		conds = append(conds, fmt.Sprintf("total_amount >= $%d", len(args)))
	}
	if f.MaxAmount != nil {
		args = append(args, *f.MaxAmount)
		conds = append(conds, fmt.Sprintf("total_amount <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// lockOrderOf returns the item indexes sorted by product id ascending, the
// order in which product locks must be acquired.
func lockOrderOf(items []NewOrderItem) []int {
	idxs := make([]int, len(items))
	for i := range idxs {
		idxs[i] = i
	}
	sort.Slice(idxs, func(a, b int) bool {
		return items[idxs[a]].ProductID < items[idxs[b]].ProductID
	})
	return idxs
}

func (c *Conf) queryOrders(ctx context.Context, query string, args []any) ([]Order, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersList := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		ordersList = append(ordersList, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range ordersList {
		items, err := queryItems(ctx, c.db, ordersList[i].ID)
		if err != nil {
			return nil, err
		}
		ordersList[i].Items = items
	}
	return ordersList, nil
}

// querier lets item loading run either on the pool or inside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryItems(ctx context.Context, q querier, orderID string) ([]OrderItem, error) {
	query := `
		SELECT id, product_id, quantity, price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`
	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Price, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
