package orders

import "time"

type Order struct {
	ID         string
	UserID     *string // nil for guest checkout
	Status     Status
	TotalPrice int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	ColorID   *string
	SizeID    *string
	Qty       int
	Price     int64 // unit price snapshot taken at order time
}
