package orders

import "context"

// Engine applies order status transitions. A transition atomically adjusts
// per-size stock counters, the owning user's cumulative spending and
// membership tier, and the order's status column; either all four effects
// commit or none do.
type Engine struct {
	Store TxStore
}

// Transition moves order orderID to newStatus.
//
// Stock moves with the committed/uncommitted partition: leaving
// {Pending, Cancelled} reserves every sized line item via a guarded
// decrement, re-entering it releases the reservation. A guard that cannot be
// satisfied fails the whole transition with *InsufficientStockError; nothing
// is partially applied.
//
// Spending moves with Delivered: entering it adds the order total to the
// user's cumulative spending, leaving it subtracts the total, and the
// membership tier is re-resolved from the updated figure. A transition to
// the current status is a no-op and succeeds without touching anything
// besides the status column.
func (e *Engine) Transition(ctx context.Context, orderID string, newStatus Status) error {
	return e.Store.InTx(ctx, func(s TransitionStore) error {
		ord, err := s.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		oldStatus := ord.Status

		if StockCommitted(oldStatus) != StockCommitted(newStatus) {
			items, err := s.ListOrderItems(ctx, orderID)
			if err != nil {
				return err
			}
			if StockCommitted(newStatus) {
				if err := reserveStock(ctx, s, orderID, items); err != nil {
					return err
				}
			} else {
				if err := releaseStock(ctx, s, items); err != nil {
					return err
				}
			}
		}

		if ord.UserID != nil {
			if delta := SpendDelta(oldStatus, newStatus, ord.TotalPrice); delta != 0 {
				if err := adjustMembership(ctx, s, *ord.UserID, delta); err != nil {
					return err
				}
			}
		}

		return s.SetStatus(ctx, orderID, newStatus)
	})
}

// reserveStock decrements stock for every sized line item. Shortages are
// collected across all items so the caller learns the full picture, then the
// transition fails as a whole; a short row never lets the order through.
func reserveStock(ctx context.Context, s TransitionStore, orderID string, items []OrderItem) error {
	var shortages []StockShortage
	for _, it := range items {
		if it.SizeID == nil {
			continue
		}
		ok, available, err := s.DecrementStock(ctx, *it.SizeID, it.Qty)
		if err != nil {
			return err
		}
		if !ok {
			shortages = append(shortages, StockShortage{
				SizeID: *it.SizeID, Required: it.Qty, Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return &InsufficientStockError{OrderID: orderID, Shortages: shortages}
	}
	return nil
}

func releaseStock(ctx context.Context, s TransitionStore, items []OrderItem) error {
	for _, it := range items {
		if it.SizeID == nil {
			continue
		}
		if err := s.IncrementStock(ctx, *it.SizeID, it.Qty); err != nil {
			return err
		}
	}
	return nil
}

// adjustMembership applies the spending delta and re-resolves the tier from
// the updated total. When the total falls below every threshold the previous
// tier is kept as-is.
func adjustMembership(ctx context.Context, s TransitionStore, userID string, delta int64) error {
	spent, err := s.AddSpending(ctx, userID, delta)
	if err != nil {
		return err
	}
	tierID, ok, err := s.TierFor(ctx, spent)
	if err != nil {
		return err
	}
	if ok {
		return s.SetMembership(ctx, userID, tierID)
	}
	return nil
}
