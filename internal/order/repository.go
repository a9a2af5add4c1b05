package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, userID string, items []ItemRequest, userAddress map[string]any) (Order, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]Order, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create places an order in a single transaction:
//   - locks each referenced product row and snapshots its price
//   - rejects the whole order if any product is missing or short on stock
//     (requests for the same product are summed across lines), before any
//     quantity changes
//   - decrements stock with a conditional update so the quantity invariant
//     holds even against concurrent placements on the same product
//   - inserts the order and its lines with the snapshotted prices
func (r *PostgresRepository) Create(ctx context.Context, userID string, items []ItemRequest, userAddress map[string]any) (Order, error) {
	if err := validateCreate(userID, items); err != nil {
		return Order{}, err
	}

	if userAddress == nil {
		userAddress = map[string]any{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock every product row first. Nothing is mutated until all lines have
	// passed both the existence and the stock check.
	type snapshot struct {
		name      string
		price     float64
		available int
	}
	snapshots := make([]snapshot, 0, len(items))

	for _, it := range items {
		var s snapshot
		// Locking the same row twice is fine; the tx already holds the lock.
		err := tx.QueryRow(ctx, `
			SELECT name, price, quantity
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, it.ProductID).Scan(&s.name, &s.price, &s.available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Order{}, fmt.Errorf("product %s: %w", it.ProductID, ErrProductNotFound)
			}
			return Order{}, fmt.Errorf("lock product %s: %w", it.ProductID, err)
		}
		snapshots = append(snapshots, s)
	}

	// The stock check aggregates over lines: an order listing the same
	// product twice must not pass two individual checks and then oversell
	// on the second decrement.
	requested := make(map[string]int, len(items))
	for _, it := range items {
		requested[it.ProductID] += it.BoughtQuantity
	}
	for i, it := range items {
		if total := requested[it.ProductID]; total > snapshots[i].available {
			return Order{}, &InsufficientStockError{
				ProductID: it.ProductID,
				Name:      snapshots[i].name,
				Requested: total,
				Available: snapshots[i].available,
			}
		}
	}

	o := Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Items:       make([]Line, 0, len(items)),
		UserAddress: userAddress,
		CreatedAt:   time.Now().UTC(),
	}

	for i, it := range items {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET quantity = quantity - $2
			WHERE id = $1 AND quantity >= $2
		`, it.ProductID, it.BoughtQuantity)
		if err != nil {
			return Order{}, fmt.Errorf("decrement product %s: %w", it.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			// The row locks plus the aggregated check keep this branch from
			// firing; it stays so a locking change cannot break the quantity
			// invariant. Re-read so the shortfall reports the current count,
			// not the snapshot taken before earlier decrements.
			var available int
			if err := tx.QueryRow(ctx, `
				SELECT quantity FROM products WHERE id = $1
			`, it.ProductID).Scan(&available); err != nil {
				return Order{}, fmt.Errorf("reread product %s: %w", it.ProductID, err)
			}
			return Order{}, &InsufficientStockError{
				ProductID: it.ProductID,
				Name:      snapshots[i].name,
				Requested: it.BoughtQuantity,
				Available: available,
			}
		}

		line := Line{
			ProductID:      it.ProductID,
			BoughtQuantity: it.BoughtQuantity,
			UnitPrice:      snapshots[i].price,
			LineTotal:      snapshots[i].price * float64(it.BoughtQuantity),
		}
		o.Items = append(o.Items, line)
		o.TotalAmount += line.LineTotal
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, user_address, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, o.ID, o.UserID, o.UserAddress, o.TotalAmount, o.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, bought_quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), o.ID, line.ProductID, line.BoughtQuantity, line.UnitPrice, line.LineTotal)
		if err != nil {
			return Order{}, fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit: %w", err)
	}

	return o, nil
}

// ListByUser returns the user's orders, newest first, paginated by
// limit/offset like the product listing.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, page Page) ([]Order, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if page.Limit < 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if page.Offset < 0 {
		return nil, &ValidationError{Field: "offset", Reason: "must not be negative"}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, user_address, total_amount, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		var addr []byte
		if err := rows.Scan(&o.ID, &o.UserID, &addr, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if len(addr) > 0 {
			if err := json.Unmarshal(addr, &o.UserAddress); err != nil {
				return nil, fmt.Errorf("decode user_address: %w", err)
			}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *PostgresRepository) listItems(ctx context.Context, orderID string) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, bought_quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	items := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.BoughtQuantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return items, nil
}

func validateCreate(userID string, items []ItemRequest) error {
	if userID == "" {
		return &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if len(items) == 0 {
		return &ValidationError{Field: "items", Reason: "must not be empty"}
	}
	for _, it := range items {
		if it.ProductID == "" {
			return &ValidationError{Field: "items.product_id", Reason: "must not be empty"}
		}
		if it.BoughtQuantity <= 0 {
			return &ValidationError{Field: "items.bought_quantity", Reason: "must be positive"}
		}
	}
	return nil
}
