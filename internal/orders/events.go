package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string  `json:"product_id"`
	SizeID    *string `json:"size_id,omitempty"`
	Qty       int     `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID    string    `json:"order_id"`
	UserID     *string   `json:"user_id,omitempty"`
	Items      []ItemQty `json:"items"`
	TotalPrice int64     `json:"total_price"`
}

type StatusChangedPayload struct {
	OrderID    string  `json:"order_id"`
	UserID     *string `json:"user_id,omitempty"`
	OldStatus  Status  `json:"old_status"`
	NewStatus  Status  `json:"new_status"`
	TotalPrice int64   `json:"total_price"`
}
