package orders

import (
	"context"
	"errors"
	"fmt"
)

var ErrOrderNotFound = errors.New("order not found")

// StockShortage records one size row whose guarded decrement could not be
// satisfied during a committal transition.
type StockShortage struct {
	SizeID    string `json:"size_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type InsufficientStockError struct {
	OrderID   string
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for order %s (%d item(s) short)", e.OrderID, len(e.Shortages))
}

// TransitionStore is the set of datastore operations a status transition
// needs. Every call runs inside the transaction opened by TxStore.InTx, so
// implementations must not commit or retry on their own.
type TransitionStore interface {
	// GetOrder loads and locks the order row. Returns ErrOrderNotFound if
	// no such order exists.
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error)

	// DecrementStock subtracts qty from a size's stock as one guarded
	// update (stock >= qty checked and applied atomically). When the guard
	// fails it reports ok=false together with the stock currently available.
	DecrementStock(ctx context.Context, sizeID string, qty int) (ok bool, available int, err error)
	IncrementStock(ctx context.Context, sizeID string, qty int) error

	// AddSpending applies a signed delta to the user's cumulative spending
	// and returns the updated total.
	AddSpending(ctx context.Context, userID string, delta int64) (int64, error)
	// TierFor resolves the membership tier with the greatest minimum
	// spending threshold not exceeding spent. ok=false when no tier
	// qualifies.
	TierFor(ctx context.Context, spent int64) (tierID string, ok bool, err error)
	SetMembership(ctx context.Context, userID, tierID string) error

	SetStatus(ctx context.Context, orderID string, s Status) error
}

// TxStore runs fn inside a single database transaction: commit when fn
// returns nil, roll every write back otherwise.
type TxStore interface {
	InTx(ctx context.Context, fn func(TransitionStore) error) error
}
