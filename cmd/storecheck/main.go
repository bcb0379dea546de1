// Command storecheck opens the configured record store, pings it and closes
// it again. It exits non-zero when any step fails.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/usershub/internal/config"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/geocoder89/usershub/internal/store"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	url := store.Redact(cfg.StoreURL)

	// Open also ensures the table or collection exists
	s, err := store.Open(ctx, cfg.StoreURL, log)

	if err != nil {
		log.Error("store open failed", "url", url, "err", err)
		os.Exit(1)
	}

	log.Info("store opened", "url", url)

	start := time.Now()
	err = s.Ping(ctx)

	if err != nil {
		log.Error("store ping failed", "url", url, "err", err)
		_ = s.Close(context.Background())
		os.Exit(1)
	}

	log.Info("store ping ok", "latency_ms", time.Since(start).Milliseconds())

	users, err := s.List(ctx)

	if err != nil {
		log.Error("store list failed", "url", url, "err", err)
		_ = s.Close(context.Background())
		os.Exit(1)
	}

	log.Info("store list ok", "count", len(users))

	err = s.Close(ctx)

	if err != nil {
		log.Error("store close failed", "err", err)
		os.Exit(1)
	}

	log.Info("store check complete")
}
