package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/moda-vn/moda/internal/kafka"
	"github.com/moda-vn/moda/internal/orders"
	"github.com/moda-vn/moda/internal/redisx"
)

// OrderStore is the slice of orders.Repo the handlers use.
type OrderStore interface {
	CreateOrderTx(ctx context.Context, userID *string, items []orders.ItemInput) (string, int64, error)
	GetOrder(ctx context.Context, orderID string) (orders.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]orders.OrderItem, error)
	ListOrders(ctx context.Context, limit int) ([]orders.Order, error)
}

type StatusTransitioner interface {
	Transition(ctx context.Context, orderID string, s orders.Status) error
}

type OrdersHandler struct {
	Orders         OrderStore
	Engine         StatusTransitioner
	Producer       *kafkax.Producer // order.created
	StatusProducer *kafkax.Producer // order.status.changed
	Redis          *redis.Client
	Service        string
}

type CreateOrderReq struct {
	UserID *string            `json:"user_id,omitempty"`
	Items  []orders.ItemInput `json:"items"`
}

type CreateOrderResp struct {
	OrderID    string `json:"order_id"`
	TotalPrice int64  `json:"total_price"`
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Get("/admin/orders", h.listOrders)
	r.Put("/admin/orders/{id}/status", h.updateStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing items"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, total, err := h.Orders.CreateOrderTx(ctx, req.UserID, req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"Pending"}`, redisx.TTLStatusCache).Err()

	items := make([]orders.ItemQty, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemQty{ProductID: it.ProductID, SizeID: it.SizeID, Qty: it.Qty})
	}
	h.publish(h.Producer, orders.EventOrderCreated, orderID, r.Header.Get("X-Request-Id"),
		orders.OrderCreatedPayload{OrderID: orderID, UserID: req.UserID, Items: items, TotalPrice: total})

	writeJSON(w, http.StatusCreated, CreateOrderResp{OrderID: orderID, TotalPrice: total})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ord, err := h.Orders.GetOrder(ctx, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	items, err := h.Orders.ListOrderItems(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": ord, "items": items})
}

// getOrderStatus serves from the Redis cache first, DB on miss.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	ord, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	b, _ := json.Marshal(map[string]any{"status": ord.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Orders.ListOrders(ctx, 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	newStatus, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ord, err := h.Orders.GetOrder(ctx, orderID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not update order"})
		return
	}
	oldStatus := ord.Status

	if err := h.Engine.Transition(ctx, orderID, newStatus); err != nil {
		var ise *orders.InsufficientStockError
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.As(err, &ise):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":     "insufficient stock",
				"shortages": ise.Shortages,
			})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not update order"})
		}
		return
	}

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]any{"status": newStatus})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()

	h.publish(h.StatusProducer, orders.EventOrderStatusChanged, orderID, r.Header.Get("X-Request-Id"),
		orders.StatusChangedPayload{
			OrderID: orderID, UserID: ord.UserID,
			OldStatus: oldStatus, NewStatus: newStatus,
			TotalPrice: ord.TotalPrice,
		})

	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "status": newStatus})
}

func (h *OrdersHandler) publish(p *kafkax.Producer, eventType, orderID, trace string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
