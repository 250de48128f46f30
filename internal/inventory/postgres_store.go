package inventory

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore operates on the stock column of the products table with
// guarded updates, so two concurrent checkouts can never drive stock below
// zero.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Reserve(ctx context.Context, lines []Line) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback()

	for _, line := range lines {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = NOW()
			 WHERE id = $2 AND stock >= $1`,
			line.Quantity, line.ProductID)
		if err != nil {
			return fmt.Errorf("reserve stock for product %d: %w", line.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			// Either the product is gone or the guard rejected the decrement;
			// distinguish for the caller.
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`,
				line.ProductID).Scan(&exists); err != nil {
				return fmt.Errorf("check product %d: %w", line.ProductID, err)
			}
			if !exists {
				return ErrProductNotFound
			}
			return ErrInsufficientStock
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reserve tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Return(ctx context.Context, lines []Line) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin return tx: %w", err)
	}
	defer tx.Rollback()

	for _, line := range lines {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2`,
			line.Quantity, line.ProductID)
		if err != nil {
			return fmt.Errorf("return stock for product %d: %w", line.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrProductNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit return tx: %w", err)
	}
	return nil
}
