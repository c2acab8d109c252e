package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AhmedSaid25/GateKeeper/internal/auth"
	"github.com/AhmedSaid25/GateKeeper/internal/clients"
	"github.com/AhmedSaid25/GateKeeper/internal/config"
	"github.com/AhmedSaid25/GateKeeper/internal/metrics"
	"github.com/AhmedSaid25/GateKeeper/internal/rate"
	"github.com/AhmedSaid25/GateKeeper/internal/secret"
	"github.com/AhmedSaid25/GateKeeper/internal/server"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("gatekeeper exited", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return err
	}

	clientStore, err := clients.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := clientStore.Close(); err != nil {
			log.Warn("failed to close client store", zap.Error(err))
		}
	}()

	hasher, err := secret.NewHasher(cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	store := rate.NewRedisStore(rdb)
	engine, err := rate.NewEngine(store, store, rate.Limit{
		Requests: cfg.Limits.DefaultLimit,
		Window:   cfg.Limits.DefaultWindow,
	})
	if err != nil {
		return err
	}

	srv := server.New(
		log,
		auth.NewVerifier(clientStore, hasher),
		engine,
		clients.NewRegistrar(clientStore, hasher),
		metrics.NewRecorder(),
	)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("gatekeeper listening", zap.String("port", cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return httpSrv.Shutdown(shutdownCtx)
}
