package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moda-vn/moda/internal/auth"
	"github.com/moda-vn/moda/internal/config"
	kafkax "github.com/moda-vn/moda/internal/kafka"
	"github.com/moda-vn/moda/internal/notify"
	"github.com/moda-vn/moda/internal/orders"
	"github.com/moda-vn/moda/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		Mailer:      notify.LogMailer{},
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	statusCons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicStatusChanged, workers)
	otpCons := kafkax.NewConsumer(cfg.KafkaBrokers, group, auth.TopicOTPRequested, workers)

	go func() {
		log.Printf("status consumer started: group=%s topic=%s workers=%d", group, orders.TopicStatusChanged, workers)
		if err := statusCons.Start(ctx, svc.HandleStatusChanged); err != nil {
			log.Printf("status consumer exit: %v", err)
			cancel()
		}
	}()
	go func() {
		log.Printf("otp consumer started: group=%s topic=%s workers=%d", group, auth.TopicOTPRequested, workers)
		if err := otpCons.Start(ctx, svc.HandleOTPRequested); err != nil {
			log.Printf("otp consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
