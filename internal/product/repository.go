package product

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, name string, price float64, quantity int, attributes map[string]any) (Product, error)
	List(ctx context.Context, filter Filter, page Page) ([]Product, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create validates the input, assigns an opaque id, and persists the product.
// The id encoding is a repository detail; callers treat it as an opaque string.
func (r *PostgresRepository) Create(ctx context.Context, name string, price float64, quantity int, attributes map[string]any) (Product, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return Product{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	case price < 0:
		return Product{}, &ValidationError{Field: "price", Reason: "must not be negative"}
	case quantity < 0:
		return Product{}, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	if attributes == nil {
		attributes = map[string]any{}
	}

	p := Product{
		ID:         uuid.NewString(),
		Name:       name,
		Price:      price,
		Quantity:   quantity,
		Attributes: attributes,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, price, quantity, attributes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.Price, p.Quantity, p.Attributes, p.CreatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}

	return p, nil
}

// List returns at most page.Limit products matching the filter, skipping
// page.Offset matches. Rows are ordered by (created_at, id) so that repeated
// pages over a stable dataset partition it without duplicates or gaps.
func (r *PostgresRepository) List(ctx context.Context, filter Filter, page Page) ([]Product, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	query := `SELECT id, name, price, quantity, attributes, created_at FROM products`
	var conds []string
	var args []any

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Size != "" {
		args = append(args, filter.Size)
		conds = append(conds, fmt.Sprintf("attributes->>'size' = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, page.Limit)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d", len(args))
	args = append(args, page.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		var attrs []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &attrs, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
				return nil, fmt.Errorf("decode attributes: %w", err)
			}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return products, nil
}
