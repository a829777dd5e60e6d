package orders

import "fmt"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusShipping  Status = "Shipping"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusShipping,
	StatusDelivered,
	StatusCancelled,
}

// ParseStatus validates a raw status string against the enumeration.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// StockCommitted reports whether an order in status s holds stock in reserve.
// Pending and Cancelled orders do not; every other status does.
func StockCommitted(s Status) bool {
	return s != StatusPending && s != StatusCancelled
}

// RecognizesRevenue reports whether status s counts the order total toward
// the owning user's cumulative spending. Only Delivered does.
func RecognizesRevenue(s Status) bool {
	return s == StatusDelivered
}

// SpendDelta is the signed change to a user's cumulative spending when an
// order worth total moves from old to new. Entering Delivered adds the total,
// leaving Delivered subtracts it, everything else nets to zero.
func SpendDelta(old, new Status, total int64) int64 {
	switch {
	case !RecognizesRevenue(old) && RecognizesRevenue(new):
		return total
	case RecognizesRevenue(old) && !RecognizesRevenue(new):
		return -total
	default:
		return 0
	}
}
