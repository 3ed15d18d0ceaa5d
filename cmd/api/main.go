package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-parfum-store.git/internal/auth"
	"github.com/ariefcatur/go-parfum-store.git/internal/catalog"
	"github.com/ariefcatur/go-parfum-store.git/internal/config"
	"github.com/ariefcatur/go-parfum-store.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-parfum-store.git/internal/kafka"
	"github.com/ariefcatur/go-parfum-store.git/internal/logging"
	"github.com/ariefcatur/go-parfum-store.git/internal/metrics"
	"github.com/ariefcatur/go-parfum-store.git/internal/orders"
	"github.com/ariefcatur/go-parfum-store.git/internal/postgres"
	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logging.New(cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: satu per topic
	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, logger)
	prodCreated.Start(ctx)
	prodStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, logger)
	prodStatus.Start(ctx)

	// Services
	orderSvc := &orders.Service{
		Store:       &orders.Repo{DB: db},
		Producer:    prodCreated,
		StatusProd:  prodStatus,
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName,
	}
	sessions := &auth.Manager{
		Admins: &auth.AdminRepo{DB: db},
		Redis:  rdb,
		TTL:    cfg.SessionTTL,
	}

	// Handlers
	m := metrics.NewServerMetrics("api")
	router := httpx.NewRouter(logger, m)

	oh := &httpx.OrdersHandler{Svc: orderSvc, Log: logger}
	ch := &httpx.CatalogHandler{Store: &catalog.Repo{DB: db}, Log: logger}
	authH := &httpx.AuthHandler{Sessions: sessions, Log: logger, SecureCookie: os.Getenv("APP_ENV") == "production"}
	uh := &httpx.UploadsHandler{Dir: cfg.UploadDir, Log: logger}

	oh.Register(router)
	ch.Register(router)
	router.Route("/admin", func(r chi.Router) {
		authH.Register(r) // login tanpa session
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(sessions))
			authH.RegisterAdmin(pr)
			oh.RegisterAdmin(pr)
			ch.RegisterAdmin(pr)
			uh.RegisterAdmin(pr)
		})
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	prodCreated.Close() // tutup inbox -> flush & close writer
	prodStatus.Close()
	cancel() // stop producer loop
	prodCreated.WaitClosed()
	prodStatus.WaitClosed()
}
