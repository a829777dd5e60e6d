package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/moda-vn/moda/internal/auth"
	kafkax "github.com/moda-vn/moda/internal/kafka"
	"github.com/moda-vn/moda/internal/orders"
	"github.com/moda-vn/moda/internal/redisx"
)

// Mailer delivers customer email. The SMTP/provider wiring lives outside
// this service.
type Mailer interface {
	SendOrderStatus(ctx context.Context, userID, orderID string, status orders.Status) error
	SendOTP(ctx context.Context, email, code string) error
}

// LogMailer stands in for a real provider in development.
type LogMailer struct{}

func (LogMailer) SendOrderStatus(_ context.Context, userID, orderID string, status orders.Status) error {
	log.Printf("mail: order %s for user %s is now %s", orderID, userID, status)
	return nil
}

func (LogMailer) SendOTP(_ context.Context, email, code string) error {
	log.Printf("mail: otp for %s: %s", email, code)
	return nil
}

type Service struct {
	Redis       *redis.Client
	Mailer      Mailer
	ServiceName string
}

// HandleStatusChanged is the consumer handler for order.status.changed.
// Guest orders have no address on file, so they are skipped.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.StatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.UserID == nil {
		return nil
	}
	return s.Mailer.SendOrderStatus(ctx, *p.UserID, p.OrderID, p.NewStatus)
}

// HandleOTPRequested is the consumer handler for auth.otp.requested.
func (s *Service) HandleOTPRequested(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != auth.EventOTPRequested {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[auth.OTPRequestedPayload](env.Payload)
	if err != nil {
		return err
	}
	return s.Mailer.SendOTP(ctx, p.Email, p.Code)
}

// seen dedups by event id. Redis being down degrades to at-least-once, which
// is fine for notification mail.
func (s *Service) seen(ctx context.Context, eventID string) bool {
	if s.Redis == nil {
		return false
	}
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, key)
	if exists {
		return true
	}
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}
