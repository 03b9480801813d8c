package customers

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

const customerColumns = `id, first_name, last_name, email, phone, created_at`

// InsertCustomer registers a customer. The email must not already be in use.
func (c *Conf) InsertCustomer(ctx context.Context, nc NewCustomer) (Customer, error) {
	customer := Customer{
		ID:        uuid.NewString(),
		FirstName: nc.FirstName,
		LastName:  nc.LastName,
		Email:     nc.Email,
		Phone:     nc.Phone,
		CreatedAt: time.Now().UTC(),
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := emailTaken(ctx, tx, nc.Email, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}

		query := `
			INSERT INTO customers (id, first_name, last_name, email, phone, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.ExecContext(ctx, query, customer.ID, customer.FirstName,
			customer.LastName, customer.Email, customer.Phone, customer.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// GetCustomerByID fetches one customer or ErrNotFound.
func (c *Conf) GetCustomerByID(ctx context.Context, id string) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(c.db.QueryRowContext(ctx, query, id))
}

// GetCustomerByEmail fetches the customer registered under the exact email.
func (c *Conf) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return scanCustomer(c.db.QueryRowContext(ctx, query, email))
}

// ListCustomers returns every customer ordered by creation time.
func (c *Conf) ListCustomers(ctx context.Context) ([]Customer, error) {
	return c.queryCustomers(ctx, "", nil)
}

// UpdateCustomerByID replaces all mutable fields. Changing the email to one
// another customer holds fails with ErrEmailExists.
func (c *Conf) UpdateCustomerByID(ctx context.Context, id string, uc UpdateCustomer) (Customer, error) {
	var updated Customer
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`
		current, err := scanCustomer(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		if uc.Email != current.Email {
			taken, err := emailTaken(ctx, tx, uc.Email, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailExists
			}
		}

		update := `
			UPDATE customers
			SET first_name = $1, last_name = $2, email = $3, phone = $4
			WHERE id = $5
		`
		if _, err := tx.ExecContext(ctx, update, uc.FirstName, uc.LastName, uc.Email, uc.Phone, id); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}

		updated = Customer{
			ID:        current.ID,
			FirstName: uc.FirstName,
			LastName:  uc.LastName,
			Email:     uc.Email,
			Phone:     uc.Phone,
			CreatedAt: current.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return Customer{}, err
	}
	return updated, nil
}

// DeleteCustomerByID removes a customer. Deletion is blocked while any order
// still references the customer.
func (c *Conf) DeleteCustomerByID(ctx context.Context, id string) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check customer existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}

		var hasOrders bool
		err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE customer_id = $1)`, id).Scan(&hasOrders)
		if err != nil {
			return fmt.Errorf("failed to check customer orders: %w", err)
		}
		if hasOrders {
			return ErrHasOrders
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		return nil
	})
}

// SearchCustomers lists customers matching the filter. An empty filter
// returns everything.
func (c *Conf) SearchCustomers(ctx context.Context, filter SearchFilter) ([]Customer, error) {
	where, args := filter.whereClause()
	return c.queryCustomers(ctx, where, args)
}

func (c *Conf) queryCustomers(ctx context.Context, where string, args []any) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY created_at`
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var cu Customer
		if err := rows.Scan(&cu.ID, &cu.FirstName, &cu.LastName, &cu.Email, &cu.Phone, &cu.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, cu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}

// whereClause translates present filter fields into AND-combined conditions.
func (f SearchFilter) whereClause() (string, []any) {
	var conds []string
	var args []any

	if f.Name != "" {
		args = append(args, "%"+strings.ToLower(f.Name)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d)", n, n))
	}
	if f.Email != "" {
		args = append(args, f.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if f.Phone != "" {
		args = append(args, "%"+f.Phone+"%")
		conds = append(conds, fmt.Sprintf("phone LIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func emailTaken(ctx context.Context, tx *sql.Tx, email, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`
	args := []any{email}
	if excludeID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1 AND id <> $2)`
		args = append(args, excludeID)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	return exists, nil
}

func scanCustomer(row *sql.Row) (Customer, error) {
	var cu Customer
	err := row.Scan(&cu.ID, &cu.FirstName, &cu.LastName, &cu.Email, &cu.Phone, &cu.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("failed to scan customer: %w", err)
	}
	return cu, nil
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
