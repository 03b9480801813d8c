package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The inventory guard serializes all stock mutations against a product row.
// AcquireForUpdate takes the row lock; the holder keeps it until its
// surrounding transaction commits or rolls back, so concurrent mutators of
// the same product queue up behind it and re-read current stock.

// AcquireForUpdate loads a product with an exclusive row lock, blocking
// until any concurrent holder's transaction resolves.
func AcquireForUpdate(ctx context.Context, tx *sql.Tx, productID string) (Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, created_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`
	var p Product
	err := tx.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: %s", ErrNotFound, productID)
		}
		return Product{}, fmt.Errorf("failed to lock product %s: %w", productID, err)
	}
	return p, nil
}

// DecrementStock reserves amount units of a locked product, writing the new
// quantity through immediately. The caller must hold the row lock.
func DecrementStock(ctx context.Context, tx *sql.Tx, p *Product, amount int) error {
	if p.StockQuantity < amount {
		return InsufficientStockError{Name: p.Name, Available: p.StockQuantity, Requested: amount}
	}
	return writeStock(ctx, tx, p, p.StockQuantity-amount)
}

// IncrementStock adds amount units back to a locked product. A negative
// amount is a manual downward adjustment and must not drive stock below
// zero.
func IncrementStock(ctx context.Context, tx *sql.Tx, p *Product, amount int) error {
	newQuantity := p.StockQuantity + amount
	if newQuantity < 0 {
		return InsufficientStockError{Name: p.Name, Available: p.StockQuantity, Requested: -amount}
	}
	return writeStock(ctx, tx, p, newQuantity)
}

func writeStock(ctx context.Context, tx *sql.Tx, p *Product, newQuantity int) error {
	_, err := tx.ExecContext(ctx, `UPDATE products SET stock_quantity = $1 WHERE id = $2`, newQuantity, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock of product %s: %w", p.ID, err)
	}
	p.StockQuantity = newQuantity
	return nil
}
