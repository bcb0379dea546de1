package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/usershub/internal/config"
	httpx "github.com/geocoder89/usershub/internal/http"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/geocoder89/usershub/internal/redisclient"
	"github.com/geocoder89/usershub/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	config.LoadDotEnv()
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	startCtx, cancelStart := config.WithTimeout(15 * time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		ServiceName: cfg.OTelServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})

	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	s, err := store.Open(startCtx, cfg.StoreURL, log)

	if err != nil {
		log.Error("store open failed", "err", err, "url", store.Redact(cfg.StoreURL))
		os.Exit(1)
	}

	var redis *redisclient.Client

	if cfg.RedisAddr != "" {
		redis, err = redisclient.Connect(startCtx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		if err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}

		log.Info("rate limiter backed by redis", "addr", cfg.RedisAddr)
	}

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Cfg:      cfg,
		Log:      log,
		Store:    store.NewObserved(s, prom),
		Prom:     prom,
		Gatherer: reg,
		Redis:    redis,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		closeAll(ctx, log, s, redis, shutdownTracer)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// closeAll releases the store, redis and the trace exporter in that order.
func closeAll(ctx context.Context, log *slog.Logger, s store.Store, redis *redisclient.Client, shutdownTracer func(context.Context) error) {
	err := s.Close(ctx)

	if err != nil {
		log.Error("store close failed", "err", err)
	}

	if redis != nil {
		err = redis.Close()

		if err != nil {
			log.Error("redis close failed", "err", err)
		}
	}

	err = shutdownTracer(ctx)

	if err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}
}
