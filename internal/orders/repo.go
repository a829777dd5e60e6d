package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemInput struct {
	ProductID string  `json:"product_id"`
	ColorID   *string `json:"color_id,omitempty"`
	SizeID    *string `json:"size_id,omitempty"`
	Qty       int     `json:"qty"`
}

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx inserts a Pending order with its line items. Unit prices are
// snapshotted from the products table inside the same transaction, never
// taken from the client. Stock is untouched here: Pending is in the
// uncommitted group, reservation happens on the first committal transition.
func (r *Repo) CreateOrderTx(ctx context.Context, userID *string, items []ItemInput) (orderID string, total int64, err error) {
	if len(items) == 0 {
		return "", 0, errors.New("order has no items")
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	productIDs := make([]any, 0, len(items))
	params := ""
	for i, it := range items {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		productIDs = append(productIDs, it.ProductID)
	}
	rows, err := tx.Query(ctx, `SELECT id, price FROM products WHERE id IN (`+params+`)`, productIDs...)
	if err != nil {
		return "", 0, err
	}
	prices := map[string]int64{}
	for rows.Next() {
		var id string
		var price int64
		if err := rows.Scan(&id, &price); err != nil {
			return "", 0, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}

	for _, it := range items {
		price, ok := prices[it.ProductID]
		if !ok {
			return "", 0, fmt.Errorf("product not found: %s", it.ProductID)
		}
		if it.Qty <= 0 {
			return "", 0, fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
		total += price * int64(it.Qty)
	}

	orderID = uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, total_price)
		VALUES ($1, $2, $3, $4)`,
		orderID, userID, StatusPending, total,
	)
	if err != nil {
		return "", 0, err
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, color_id, size_id, qty, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), orderID, it.ProductID, it.ColorID, it.SizeID, it.Qty, prices[it.ProductID],
		)
		if err != nil {
			return "", 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", 0, err
	}
	return orderID, total, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders WHERE id=$1`, orderID,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, color_id, size_id, qty, price
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ColorID, &it.SizeID, &it.Qty, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListOrders returns the newest orders first, for the back-office console.
func (r *Repo) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *Repo) ListUserOrders(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
