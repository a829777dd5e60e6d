package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/moda-vn/moda/internal/kafka"
	"github.com/moda-vn/moda/internal/orders"
	"github.com/moda-vn/moda/internal/redisx"
)

const (
	TopicOTPRequested = "auth.otp.requested"
	EventOTPRequested = "OTPRequested"
)

type OTPRequestedPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Service issues and checks one-time sign-in codes. The code lives in Redis
// until its TTL runs out or it is consumed; delivery is done by whoever
// consumes the published event.
type Service struct {
	Redis       *redis.Client
	Producer    *kafkax.Producer
	TTL         time.Duration
	ServiceName string
}

// RequestCode generates a 6-digit code for email and publishes it for the
// mailer. A repeated request overwrites the previous code.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	key := fmt.Sprintf(redisx.KeyOTP, email)
	if err := s.Redis.Set(ctx, key, code, s.TTL).Err(); err != nil {
		return err
	}

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOTPRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: email,
		Payload:       kafkax.MustMarshal(OTPRequestedPayload{Email: email, Code: code}),
	}
	s.Producer.Publish([]byte(email), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOTPRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}

// VerifyCode consumes the stored code on a match; a second verify with the
// same code fails.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	key := fmt.Sprintf(redisx.KeyOTP, email)
	stored, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		return false, nil
	}
	_ = s.Redis.Del(ctx, key).Err()
	return true, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
