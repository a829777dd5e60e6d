package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore backs the transition engine with postgres. One InTx call is one
// database transaction; concurrent transitions against the same order
// serialize on the FOR UPDATE lock taken by GetOrder.
type PGStore struct{ DB *pgxpool.Pool }

func (p *PGStore) InTx(ctx context.Context, fn func(TransitionStore) error) error {
	tx, err := p.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type txStore struct{ tx pgx.Tx }

func (s *txStore) GetOrder(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := s.tx.QueryRow(ctx, `
		SELECT id, user_id, status, total_price, created_at, updated_at
		FROM orders WHERE id=$1 FOR UPDATE`, orderID,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *txStore) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := s.tx.Query(ctx, `
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

// DecrementStock is a guarded conditional update: check and subtract happen
// in one statement, never read-then-write.
func (s *txStore) DecrementStock(ctx context.Context, sizeID string, qty int) (bool, int, error) {
	ct, err := s.tx.Exec(ctx, `
		UPDATE product_sizes SET stock = stock - $2
		WHERE id=$1 AND stock >= $2`, sizeID, qty)
	if err != nil {
		return false, 0, err
	}
	if ct.RowsAffected() == 1 {
		return true, 0, nil
	}
	var available int
	if err := s.tx.QueryRow(ctx, `SELECT stock FROM product_sizes WHERE id=$1`, sizeID).Scan(&available); err != nil {
		return false, 0, err
	}
	return false, available, nil
}

func (s *txStore) IncrementStock(ctx context.Context, sizeID string, qty int) error {
	_, err := s.tx.Exec(ctx, `UPDATE product_sizes SET stock = stock + $2 WHERE id=$1`, sizeID, qty)
	return err
}

func (s *txStore) AddSpending(ctx context.Context, userID string, delta int64) (int64, error) {
	var spent int64
	err := s.tx.QueryRow(ctx, `
		UPDATE users SET total_spent = total_spent + $2
		WHERE id=$1 RETURNING total_spent`, userID, delta,
	).Scan(&spent)
	return spent, err
}

func (s *txStore) TierFor(ctx context.Context, spent int64) (string, bool, error) {
	var tierID string
	err := s.tx.QueryRow(ctx, `
		SELECT id FROM memberships
		WHERE min_spending <= $1
		ORDER BY min_spending DESC LIMIT 1`, spent,
	).Scan(&tierID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tierID, true, nil
}

func (s *txStore) SetMembership(ctx context.Context, userID, tierID string) error {
	_, err := s.tx.Exec(ctx, `UPDATE users SET membership_id=$2 WHERE id=$1`, userID, tierID)
	return err
}

func (s *txStore) SetStatus(ctx context.Context, orderID string, st Status) error {
	_, err := s.tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, st)
	return err
}
