package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/eventlog"
	"chat-relay/infrastructure/api"
	"chat-relay/infrastructure/ws"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting, so every defer (database close, log close) executes before
// the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Message store (Postgres)
	pool, err := pgxpool.New(ctx, config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	store := repositories.NewMessageRepository(pool, log)

	// 3. Durable event log
	var events contract.EventLog
	switch config.LogBackend {
	case "redis":
		redisLog, err := eventlog.NewRedisLog(ctx, config.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer func() {
			log.Info("Closing redis event log...")
			_ = redisLog.Close()
		}()
		events = redisLog
	case "badger":
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("database opening failed: %w", err)
		}
		badgerLog := eventlog.NewBadgerLog(db)
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = badgerLog.Close()
			_ = db.Close()
		}()
		events = badgerLog
	}

	// 4. Workers under supervision: one drain per partition plus the
	// process stats sampler
	registry := runtime.NewRegistry(config.FanoutCapacity)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	for _, partition := range config.Partitions() {
		sup.Add(workers.NewLogDrainWorker(
			log, events, store, partition.Name, config.DrainGroup, partition.Interval))
	}
	sup.Add(workers.NewStatsWorker(log, registry, config.StatsInterval))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 5. Gateway, accounts & router
	authenticator := auth.NewAuthenticator(config.TokenSecret, config.TokenDuration)
	gateway := ws.NewGateway(log, authenticator, registry, events)
	accounts := services.NewAccountService(repositories.NewUserRepository(pool, log), authenticator)
	accountHandler := api.NewAccountHandler(log, accounts)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Post("/auth/register", accountHandler.Register)
	router.Post("/auth/login", accountHandler.Login)
	router.Get("/ws/{room}", gateway.Handle)

	// 6. HTTP server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:    address,
		Handler: router,
	}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay server", "address", address, "backend", config.LogBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
