package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Shipping")
	assert.NoError(t, err)
	assert.Equal(t, StatusShipping, s)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStockCommitted(t *testing.T) {
	assert.False(t, StockCommitted(StatusPending))
	assert.False(t, StockCommitted(StatusCancelled))
	assert.True(t, StockCommitted(StatusConfirmed))
	assert.True(t, StockCommitted(StatusShipping))
	assert.True(t, StockCommitted(StatusDelivered))
}

func TestRecognizesRevenue(t *testing.T) {
	for _, s := range allStatuses {
		assert.Equal(t, s == StatusDelivered, RecognizesRevenue(s))
	}
}

func TestSpendDelta(t *testing.T) {
	const total = int64(500000)

	assert.Equal(t, total, SpendDelta(StatusShipping, StatusDelivered, total))
	assert.Equal(t, -total, SpendDelta(StatusDelivered, StatusCancelled, total))
	assert.Zero(t, SpendDelta(StatusPending, StatusShipping, total))
	assert.Zero(t, SpendDelta(StatusDelivered, StatusDelivered, total))
	assert.Zero(t, SpendDelta(StatusCancelled, StatusPending, total))
}
