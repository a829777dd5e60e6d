package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements TxStore and TransitionStore in memory. InTx snapshots
// the state up front and restores it when fn fails, mirroring a rolled-back
// database transaction.
type fakeStore struct {
	orders   map[string]Order
	items    map[string][]OrderItem
	stock    map[string]int
	spent    map[string]int64
	tiers    []fakeTier // ascending by min
	userTier map[string]string

	setStatusErr error // injected fault
}

type fakeTier struct {
	id  string
	min int64
}

func (f *fakeStore) InTx(ctx context.Context, fn func(TransitionStore) error) error {
	snap := f.clone()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		orders:   map[string]Order{},
		items:    map[string][]OrderItem{},
		stock:    map[string]int{},
		spent:    map[string]int64{},
		tiers:    f.tiers,
		userTier: map[string]string{},
	}
	for k, v := range f.orders {
		c.orders[k] = v
	}
	for k, v := range f.items {
		c.items[k] = v
	}
	for k, v := range f.stock {
		c.stock[k] = v
	}
	for k, v := range f.spent {
		c.spent[k] = v
	}
	for k, v := range f.userTier {
		c.userTier[k] = v
	}
	return c
}

func (f *fakeStore) restore(snap *fakeStore) {
	f.orders = snap.orders
	f.items = snap.items
	f.stock = snap.stock
	f.spent = snap.spent
	f.userTier = snap.userTier
}

func (f *fakeStore) GetOrder(_ context.Context, orderID string) (Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeStore) ListOrderItems(_ context.Context, orderID string) ([]OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeStore) DecrementStock(_ context.Context, sizeID string, qty int) (bool, int, error) {
	if f.stock[sizeID] < qty {
		return false, f.stock[sizeID], nil
	}
	f.stock[sizeID] -= qty
	return true, 0, nil
}

func (f *fakeStore) IncrementStock(_ context.Context, sizeID string, qty int) error {
	f.stock[sizeID] += qty
	return nil
}

func (f *fakeStore) AddSpending(_ context.Context, userID string, delta int64) (int64, error) {
	f.spent[userID] += delta
	return f.spent[userID], nil
}

func (f *fakeStore) TierFor(_ context.Context, spent int64) (string, bool, error) {
	id, ok := "", false
	for _, t := range f.tiers {
		if t.min <= spent {
			id, ok = t.id, true
		}
	}
	return id, ok, nil
}

func (f *fakeStore) SetMembership(_ context.Context, userID, tierID string) error {
	f.userTier[userID] = tierID
	return nil
}

func (f *fakeStore) SetStatus(_ context.Context, orderID string, s Status) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	o := f.orders[orderID]
	o.Status = s
	f.orders[orderID] = o
	return nil
}

func strptr(s string) *string { return &s }

// newScenarioStore builds the fixture from the acceptance scenario: order 42
// worth 500000 owned by user 9, one line item of size 7 x2, stock(7)=10.
func newScenarioStore() *fakeStore {
	return &fakeStore{
		orders: map[string]Order{
			"42": {ID: "42", UserID: strptr("9"), Status: StatusPending, TotalPrice: 500000},
		},
		items: map[string][]OrderItem{
			"42": {{ID: "i1", OrderID: "42", ProductID: "p1", SizeID: strptr("7"), Qty: 2, Price: 250000}},
		},
		stock:    map[string]int{"7": 10},
		spent:    map[string]int64{"9": 0},
		tiers:    []fakeTier{{"bronze", 0}, {"silver", 1_000_000}, {"gold", 5_000_000}},
		userTier: map[string]string{"9": "bronze"},
	}
}

func TestTransitionOrderNotFound(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}

	err := e.Transition(context.Background(), "no-such-order", StatusShipping)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 10, st.stock["7"])
}

func TestTransitionSameStatusIsIdempotent(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusPending))
	assert.Equal(t, 10, st.stock["7"])
	assert.Equal(t, int64(0), st.spent["9"])
	assert.Equal(t, "bronze", st.userTier["9"])
	assert.Equal(t, StatusPending, st.orders["42"].Status)
}

func TestTransitionReservesStockOnCommittal(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusShipping))
	assert.Equal(t, 8, st.stock["7"])
	assert.Equal(t, int64(0), st.spent["9"], "Shipping recognizes no revenue")
	assert.Equal(t, StatusShipping, st.orders["42"].Status)
}

func TestTransitionWithinCommittedGroupKeepsStock(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusConfirmed))
	require.NoError(t, e.Transition(context.Background(), "42", StatusShipping))
	assert.Equal(t, 8, st.stock["7"], "Confirmed and Shipping are both committed")
}

func TestInventoryConservation(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusConfirmed))
	require.NoError(t, e.Transition(context.Background(), "42", StatusCancelled))
	assert.Equal(t, 10, st.stock["7"], "commit then cancel must net to zero")
}

func TestDeliveredAddsSpendingAndTier(t *testing.T) {
	st := newScenarioStore()
	st.orders["42"] = Order{ID: "42", UserID: strptr("9"), Status: StatusPending, TotalPrice: 1_500_000}
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusDelivered))
	assert.Equal(t, int64(1_500_000), st.spent["9"])
	assert.Equal(t, "silver", st.userTier["9"], "greatest threshold <= 1500000 is the 1000000 tier")
}

func TestLeavingDeliveredRevertsSpending(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusDelivered))
	require.NoError(t, e.Transition(context.Background(), "42", StatusShipping))
	assert.Equal(t, int64(0), st.spent["9"])
	assert.Equal(t, "bronze", st.userTier["9"])
}

func TestNoDoubleCountAcrossRepeatedFulfillment(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}
	ctx := context.Background()

	require.NoError(t, e.Transition(ctx, "42", StatusDelivered))
	require.NoError(t, e.Transition(ctx, "42", StatusShipping))
	require.NoError(t, e.Transition(ctx, "42", StatusDelivered))
	assert.Equal(t, int64(500000), st.spent["9"], "net of two entries and one exit is one total")
}

func TestTierKeptWhenSpendingFallsBelowAllThresholds(t *testing.T) {
	st := newScenarioStore()
	st.tiers = []fakeTier{{"silver", 1_000_000}, {"gold", 5_000_000}} // no floor tier
	st.spent["9"] = 1_200_000
	st.userTier["9"] = "silver"
	st.orders["42"] = Order{ID: "42", UserID: strptr("9"), Status: StatusDelivered, TotalPrice: 500_000}
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusCancelled))
	assert.Equal(t, int64(700_000), st.spent["9"])
	assert.Equal(t, "silver", st.userTier["9"], "previous tier stays when nothing qualifies")
}

func TestGuestOrderSkipsMembership(t *testing.T) {
	st := newScenarioStore()
	st.orders["42"] = Order{ID: "42", UserID: nil, Status: StatusPending, TotalPrice: 500000}
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusDelivered))
	assert.Empty(t, st.spent["9"])
	assert.Equal(t, 8, st.stock["7"], "guest orders still reserve stock")
}

func TestItemsWithoutSizeAreSkipped(t *testing.T) {
	st := newScenarioStore()
	st.items["42"] = []OrderItem{
		{ID: "i1", OrderID: "42", ProductID: "p1", SizeID: nil, Qty: 3, Price: 100},
		{ID: "i2", OrderID: "42", ProductID: "p2", SizeID: strptr("7"), Qty: 1, Price: 100},
	}
	e := &Engine{Store: st}

	require.NoError(t, e.Transition(context.Background(), "42", StatusConfirmed))
	assert.Equal(t, 9, st.stock["7"])
}

func TestInsufficientStockFailsWholeTransition(t *testing.T) {
	st := newScenarioStore()
	st.items["42"] = []OrderItem{
		{ID: "i1", OrderID: "42", ProductID: "p1", SizeID: strptr("7"), Qty: 2, Price: 100},
		{ID: "i2", OrderID: "42", ProductID: "p2", SizeID: strptr("8"), Qty: 5, Price: 100},
	}
	st.stock["8"] = 3
	e := &Engine{Store: st}

	err := e.Transition(context.Background(), "42", StatusShipping)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	assert.Equal(t, StockShortage{SizeID: "8", Required: 5, Available: 3}, ise.Shortages[0])

	// rollback: the satisfiable decrement must not stick either
	assert.Equal(t, 10, st.stock["7"])
	assert.Equal(t, 3, st.stock["8"])
	assert.Equal(t, StatusPending, st.orders["42"].Status)
}

func TestStoreFailureRollsBackEverything(t *testing.T) {
	st := newScenarioStore()
	st.setStatusErr = errors.New("connection reset")
	e := &Engine{Store: st}

	err := e.Transition(context.Background(), "42", StatusDelivered)
	require.Error(t, err)
	assert.Equal(t, 10, st.stock["7"])
	assert.Equal(t, int64(0), st.spent["9"])
	assert.Equal(t, StatusPending, st.orders["42"].Status)
}

// TestFullLifecycleScenario walks the acceptance scenario end to end:
// Pending -> Shipping -> Delivered -> Cancelled.
func TestFullLifecycleScenario(t *testing.T) {
	st := newScenarioStore()
	e := &Engine{Store: st}
	ctx := context.Background()

	require.NoError(t, e.Transition(ctx, "42", StatusShipping))
	assert.Equal(t, 8, st.stock["7"])
	assert.Equal(t, int64(0), st.spent["9"])
	assert.Equal(t, StatusShipping, st.orders["42"].Status)

	require.NoError(t, e.Transition(ctx, "42", StatusDelivered))
	assert.Equal(t, 8, st.stock["7"], "Shipping and Delivered share the committed group")
	assert.Equal(t, int64(500000), st.spent["9"])
	assert.Equal(t, "bronze", st.userTier["9"])

	require.NoError(t, e.Transition(ctx, "42", StatusCancelled))
	assert.Equal(t, 10, st.stock["7"])
	assert.Equal(t, int64(0), st.spent["9"])
	assert.Equal(t, StatusCancelled, st.orders["42"].Status)
}
