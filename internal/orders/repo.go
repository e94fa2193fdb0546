package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repo struct{ DB *pgxpool.Pool }

// numeric kolom dibaca sebagai text lalu di-parse ke decimal.
func parseMoney(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, COALESCE(price::text, ''), stock, COALESCE(category, '')
                                FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.Category); err != nil {
			return nil, err
		}
		if p.Price, err = parseMoney(price); err != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListOrders returns orders created at or after since, newest first.
// A zero since returns every order.
func (r *Repo) ListOrders(ctx context.Context, since time.Time) ([]Order, error) {
	q := `SELECT id, COALESCE(customer_id, ''), COALESCE(total::text, ''), status, created_at FROM orders`
	var args []any
	if !since.IsZero() {
		q += ` WHERE created_at >= $1`
		args = append(args, since)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o         Order
			total     string
			status    string
			createdAt *time.Time
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &total, &status, &createdAt); err != nil {
			return nil, err
		}
		if o.Total, err = parseMoney(total); err != nil {
			return nil, fmt.Errorf("order %s total: %w", o.ID, err)
		}
		o.Status = Status(status)
		if createdAt != nil {
			o.CreatedAt = createdAt.UTC()
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) ListOrderItems(ctx context.Context) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, order_id, product_id, quantity, COALESCE(price::text, '')
                                FROM order_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var (
			it    OrderItem
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.Price, err = parseMoney(price); err != nil {
			return nil, fmt.Errorf("order item %s price: %w", it.ID, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// UpdateStatus: lock row (FOR UPDATE) -> cek transisi -> update.
// Mengembalikan status lama supaya caller bisa publish event.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) (from Status, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	from = Status(cur)
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	ct, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, string(to))
	if err != nil {
		return from, err
	}
	if ct.RowsAffected() != 1 {
		return from, ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return from, err
	}
	return from, nil
}
