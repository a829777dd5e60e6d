package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moda-vn/moda/internal/auth"
	kafkax "github.com/moda-vn/moda/internal/kafka"
	"github.com/moda-vn/moda/internal/orders"
)

type recordingMailer struct {
	statusCalls []string // "userID/orderID/status"
	otpCalls    []string // "email/code"
}

func (m *recordingMailer) SendOrderStatus(_ context.Context, userID, orderID string, status orders.Status) error {
	m.statusCalls = append(m.statusCalls, userID+"/"+orderID+"/"+string(status))
	return nil
}

func (m *recordingMailer) SendOTP(_ context.Context, email, code string) error {
	m.otpCalls = append(m.otpCalls, email+"/"+code)
	return nil
}

func envelope(eventType string, payload any) kafkago.Message {
	ev := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(ev)}
}

func TestHandleStatusChanged(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, ServiceName: "notifier"}
	userID := "9"

	msg := envelope(orders.EventOrderStatusChanged, orders.StatusChangedPayload{
		OrderID: "42", UserID: &userID,
		OldStatus: orders.StatusShipping, NewStatus: orders.StatusDelivered,
		TotalPrice: 500000,
	})
	require.NoError(t, svc.HandleStatusChanged(context.Background(), msg))
	require.Len(t, mailer.statusCalls, 1)
	assert.Equal(t, "9/42/Delivered", mailer.statusCalls[0])
}

func TestHandleStatusChangedSkipsGuestOrders(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, ServiceName: "notifier"}

	msg := envelope(orders.EventOrderStatusChanged, orders.StatusChangedPayload{
		OrderID: "42", UserID: nil,
		OldStatus: orders.StatusPending, NewStatus: orders.StatusConfirmed,
	})
	require.NoError(t, svc.HandleStatusChanged(context.Background(), msg))
	assert.Empty(t, mailer.statusCalls)
}

func TestHandleStatusChangedIgnoresOtherEvents(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, ServiceName: "notifier"}

	msg := envelope(orders.EventOrderCreated, orders.OrderCreatedPayload{OrderID: "42"})
	require.NoError(t, svc.HandleStatusChanged(context.Background(), msg))
	assert.Empty(t, mailer.statusCalls)
}

func TestHandleOTPRequested(t *testing.T) {
	mailer := &recordingMailer{}
	svc := &Service{Mailer: mailer, ServiceName: "notifier"}

	msg := envelope(auth.EventOTPRequested, auth.OTPRequestedPayload{
		Email: "a@b.vn", Code: "123456",
	})
	require.NoError(t, svc.HandleOTPRequested(context.Background(), msg))
	require.Len(t, mailer.otpCalls, 1)
	assert.Equal(t, "a@b.vn/123456", mailer.otpCalls[0])
}

func TestHandleStatusChangedBadJSON(t *testing.T) {
	svc := &Service{Mailer: &recordingMailer{}, ServiceName: "notifier"}
	err := svc.HandleStatusChanged(context.Background(), kafkago.Message{Value: []byte("{")})
	assert.Error(t, err)
}
