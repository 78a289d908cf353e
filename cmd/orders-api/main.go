package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/plasto-orders/internal/api"
	"github.com/dmehra2102/plasto-orders/internal/config"
	"github.com/dmehra2102/plasto-orders/migrations"
	"github.com/dmehra2102/plasto-orders/pkg/clock"
	"github.com/dmehra2102/plasto-orders/pkg/healthcheck"
	"github.com/dmehra2102/plasto-orders/pkg/idempotency"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
	"github.com/dmehra2102/plasto-orders/pkg/outbox"
	"github.com/dmehra2102/plasto-orders/pkg/shutdown"
	"github.com/dmehra2102/plasto-orders/pkg/tracing"

	authapp "github.com/dmehra2102/plasto-orders/internal/auth/application"
	authhttp "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/http"
	authpg "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/postgres"
	"github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/token"
	catalogapp "github.com/dmehra2102/plasto-orders/internal/catalog/application"
	cataloghttp "github.com/dmehra2102/plasto-orders/internal/catalog/infrastructure/http"
	catalogpg "github.com/dmehra2102/plasto-orders/internal/catalog/infrastructure/postgres"
	orderapp "github.com/dmehra2102/plasto-orders/internal/order/application"
	orderhttp "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/plasto-orders/internal/order/infrastructure/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Options{}).Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "orders-api", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := migrations.Apply(ctx, log, pool); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Redis is optional; without it Idempotency-Key is ignored.
	var idemStore *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		idemStore = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	}

	// Kafka + outbox relay
	writer := orderkafka.NewWriter(strings.Split(cfg.KafkaAddr, ","))
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, orderpg.NewOutboxStore(log, pool), dispatch, "orders-api-relay")

	clk := clock.New(cfg.Location())
	issuer, err := token.NewIssuer(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("token issuer init failed", "err", err)
		os.Exit(1)
	}

	authSvc := authapp.NewService(log, authpg.NewRepository(log, pool), issuer, clk)
	catalogSvc := catalogapp.NewService(catalogpg.NewRepository(log, pool))
	orderSvc := orderapp.NewService(log, orderpg.NewRepository(log, pool), catalogSvc, authSvc, clk)

	idem := idempotency.Middleware(log, idemStore, "orders.create", authhttp.Subject)
	router := api.NewRouter(log, api.Handlers{
		Auth:    authhttp.NewHandler(log, authSvc),
		Orders:  orderhttp.NewHandler(log, orderSvc, idem),
		Catalog: cataloghttp.NewHandler(log, catalogSvc),
	}, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// gRPC health follows the database
	health := healthcheck.NewServer(log, pool.Ping, 5*time.Second)
	grpcSrv, err := healthcheck.Run(cfg.GRPCAddr, health)
	if err != nil {
		log.Error("grpc listen failed", "err", err)
		os.Exit(1)
	}
	go health.Watch(ctx)
	log.Info("grpc health listening", "addr", cfg.GRPCAddr)

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	grpcSrv.GracefulStop()
	log.Info("orders-api shutdown complete")
}
