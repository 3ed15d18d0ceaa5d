package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-parfum-store.git/internal/config"
	kafkax "github.com/ariefcatur/go-parfum-store.git/internal/kafka"
	"github.com/ariefcatur/go-parfum-store.git/internal/logging"
	"github.com/ariefcatur/go-parfum-store.git/internal/notifier"
	"github.com/ariefcatur/go-parfum-store.git/internal/orders"
	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
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

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logging.New(cfg.ServiceName + "-worker")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName + "-worker",
	}

	group := getenv("WORKER_GROUP", "parfum-worker")
	workers := mustAtoi(os.Getenv("WORKER_CONCURRENCY"), "8")

	consCreated := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderCreated, workers, logger)
	consStatus := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderStatusChanged, workers, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consCreated.Start(gctx, svc.HandleOrderCreated) })
	g.Go(func() error { return consStatus.Start(gctx, svc.HandleStatusChanged) })
	logger.Info("worker consumers started",
		zap.String("group", group), zap.Int("workers", workers))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info("shutting down worker")
		cancel()
	case <-gctx.Done():
	}

	if err := g.Wait(); err != nil {
		logger.Error("consumer exit", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
