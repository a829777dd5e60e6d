package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moda-vn/moda/internal/auth"
	"github.com/moda-vn/moda/internal/catalog"
	"github.com/moda-vn/moda/internal/config"
	"github.com/moda-vn/moda/internal/httpx"
	kafkax "github.com/moda-vn/moda/internal/kafka"
	"github.com/moda-vn/moda/internal/orders"
	"github.com/moda-vn/moda/internal/postgres"
	"github.com/moda-vn/moda/internal/redisx"
	"github.com/moda-vn/moda/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStatusChanged, 1024)
	pStatus.Start(ctx)
	pOTP := kafkax.NewProducer(cfg.KafkaBrokers, auth.TopicOTPRequested, 256)
	pOTP.Start(ctx)

	// Repos & engine
	orderRepo := &orders.Repo{DB: db}
	engine := &orders.Engine{Store: &orders.PGStore{DB: db}}

	// Handlers
	router := httpx.NewRouter()
	(&httpx.OrdersHandler{
		Orders:         orderRepo,
		Engine:         engine,
		Producer:       pCreated,
		StatusProducer: pStatus,
		Redis:          rdb,
		Service:        cfg.ServiceName,
	}).Register(router)
	(&httpx.CatalogHandler{
		Repo:  &catalog.Repo{DB: db},
		Redis: rdb,
	}).Register(router)
	(&httpx.UsersHandler{
		Users:  &users.Repo{DB: db},
		Orders: orderRepo,
	}).Register(router)
	(&httpx.AuthHandler{
		OTP: &auth.Service{
			Redis:       rdb,
			Producer:    pOTP,
			TTL:         cfg.OTPTTL,
			ServiceName: cfg.ServiceName,
		},
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range []*kafkax.Producer{pCreated, pStatus, pOTP} {
		p.Close() // flush remaining messages
	}
	cancel()
	for _, p := range []*kafkax.Producer{pCreated, pStatus, pOTP} {
		p.WaitClosed()
	}
}
