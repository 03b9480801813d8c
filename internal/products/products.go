package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

const productColumns = `id, name, description, price, stock_quantity, created_at`

// InsertProduct persists a product with a generated id and timestamp.
func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	product := Product{
		ID:            uuid.NewString(),
		Name:          np.Name,
		Description:   np.Description,
		Price:         np.Price,
		StockQuantity: np.StockQuantity,
		CreatedAt:     time.Now().UTC(),
	}

	query := `
		INSERT INTO products (id, name, description, price, stock_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := c.db.ExecContext(ctx, query, product.ID, product.Name, product.Description,
		product.Price, product.StockQuantity, product.CreatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return product, nil
}

// GetProductByID fetches one product or ErrNotFound.
func (c *Conf) GetProductByID(ctx context.Context, id string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	var p Product
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// ListProducts returns every product ordered by creation time.
func (c *Conf) ListProducts(ctx context.Context) ([]Product, error) {
	return c.queryProducts(ctx, "", nil)
}

// ListProductsInStock returns products with stock_quantity > 0.
func (c *Conf) ListProductsInStock(ctx context.Context) ([]Product, error) {
	return c.queryProducts(ctx, " WHERE stock_quantity > 0", nil)
}

// UpdateProductByID replaces all mutable fields, including a direct stock
// overwrite. Fails with ErrNotFound if the product is absent.
func (c *Conf) UpdateProductByID(ctx context.Context, id string, up UpdateProduct) (Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4
		WHERE id = $5
		RETURNING ` + productColumns

	var p Product
	err := c.db.QueryRowContext(ctx, query, up.Name, up.Description, up.Price, up.StockQuantity, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

// DeleteProductByID removes a product or fails with ErrNotFound.
func (c *Conf) DeleteProductByID(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies a manual stock delta through the lock-then-mutate
// path. Delta may be negative; the result must not go below zero.
func (c *Conf) AdjustStock(ctx context.Context, id string, delta int) (Product, error) {
	var adjusted Product
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		p, err := AcquireForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := IncrementStock(ctx, tx, &p, delta); err != nil {
			return err
		}
		adjusted = p
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return adjusted, nil
}

// SearchProducts lists products matching the filter. An empty filter
// returns everything.
func (c *Conf) SearchProducts(ctx context.Context, filter SearchFilter) ([]Product, error) {
	where, args := filter.whereClause()
	return c.queryProducts(ctx, where, args)
}

func (c *Conf) queryProducts(ctx context.Context, where string, args []any) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY created_at`
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	productsList := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		productsList = append(productsList, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return productsList, nil
}

// whereClause translates present filter fields into AND-combined conditions.
func (f SearchFilter) whereClause() (string, []any) {
	var conds []string
	var args []any

	if f.Name != "" {
		args = append(args, "%"+strings.ToLower(f.Name)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}
	if f.MinStock != nil {
		args = append(args, *f.MinStock)
		conds = append(conds, fmt.Sprintf("stock_quantity >= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
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
