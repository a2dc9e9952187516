package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statuswatch/app/internal/cache"
	"statuswatch/app/internal/checker"
	"statuswatch/app/internal/config"
	"statuswatch/app/internal/handlers"
	"statuswatch/app/internal/history"
	"statuswatch/app/internal/kv"
	"statuswatch/app/internal/poller"
	"statuswatch/app/internal/status"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Services) == 0 {
		log.Fatal("No services configured (set SERVICES, e.g. SERVICES=api=http://localhost:3000)")
	}

	backend, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}

	store := history.New(backend, cfg.RetentionDays)
	chk := checker.New(cfg.CheckTimeout)
	statusCache := cache.New(cfg.CacheTTL)
	presenter := status.NewPresenter(cfg.Services, store, statusCache, cfg.DegradedMs)

	var p *poller.Poller
	if cfg.EnablePoller {
		p = poller.New(cfg.Services, chk, store, cfg.PollInterval)
		p.Start()
		log.Printf("Poller started services=%d interval=%v", len(cfg.Services), cfg.PollInterval)
	}

	mux := handlers.SetupRoutes(presenter, store)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.SecureHeaders(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	if p != nil {
		p.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	statusCache.Stop()
	if err := backend.Close(); err != nil {
		log.Printf("Store close failed: %v", err)
	}
}

// openStore picks the kv backend from configuration. The store handle is
// constructed once here and injected everywhere it is needed.
func openStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return kv.OpenSQLite(cfg.DBPath)
	case "redis":
		return kv.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	case "memory":
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
