package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, name, price, stock, category, brand, images, short_description, long_description, specs, active, created_at, updated_at`

func (r *Repository) GetAll(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p *domain.Product) error {
	images, specs, err := marshalAux(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO products (name, price, stock, category, brand, images, short_description, long_description, specs, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	          RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		p.Name, p.Price, p.Stock, p.Category, p.Brand,
		images, p.ShortDescription, p.LongDescription, specs, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, p *domain.Product) error {
	images, specs, err := marshalAux(p)
	if err != nil {
		return err
	}

	query := `UPDATE products
	          SET name = $1, price = $2, stock = $3, category = $4, brand = $5,
	              images = $6, short_description = $7, long_description = $8,
	              specs = $9, active = $10, updated_at = NOW()
	          WHERE id = $11`

	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Price, p.Stock, p.Category, p.Brand,
		images, p.ShortDescription, p.LongDescription, specs, p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return checkAffected(res)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func marshalAux(p *domain.Product) (images, specs []byte, err error) {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Specs == nil {
		p.Specs = map[string]string{}
	}
	images, err = json.Marshal(p.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	specs, err = json.Marshal(p.Specs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal specs: %w", err)
	}
	return images, specs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var images, specs []byte
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Category,
		&p.Brand,
		&images,
		&p.ShortDescription,
		&p.LongDescription,
		&specs,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images: %w", err)
	}
	if err := json.Unmarshal(specs, &p.Specs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal specs: %w", err)
	}
	return p, nil
}
