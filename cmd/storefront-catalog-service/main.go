// Package main boots the Storefront Catalog Service HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/storefront-catalog-service/internal/cache"
	"github.com/fairyhunter13/storefront-catalog-service/internal/catalog"
	"github.com/fairyhunter13/storefront-catalog-service/internal/config"
	"github.com/fairyhunter13/storefront-catalog-service/internal/events"
	httpapi "github.com/fairyhunter13/storefront-catalog-service/internal/http"
	"github.com/fairyhunter13/storefront-catalog-service/internal/obs"
	"github.com/fairyhunter13/storefront-catalog-service/internal/store"
	"github.com/fairyhunter13/storefront-catalog-service/internal/store/mongostore"
)

type closer func(context.Context) error

// openStore returns a nil Store when the database cannot be reached; the
// service then runs detached and reports the database as disconnected.
func openStore(ctx context.Context, cfg config.Config) (catalog.Store, closer) {
	if cfg.StoreDriver == config.StoreMemory {
		obs.Logger.Warn("store_memory_mode")
		return store.New(), nil
	}
	ms, err := mongostore.Connect(ctx, mongostore.Options{
		URI:                    cfg.MongoURI,
		Database:               cfg.MongoDatabase,
		ConnectTimeout:         cfg.MongoConnectTimeout,
		ServerSelectionTimeout: cfg.MongoSelectionTimeout,
	})
	if err != nil {
		obs.Logger.Error("store_connect_failed", "error", err, "database", cfg.MongoDatabase)
		return nil, nil
	}
	obs.Logger.Info("store_connected", "database", cfg.MongoDatabase)
	return ms, ms.Close
}

func openCache(ctx context.Context, cfg config.Config) (catalog.Cache, closer) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rc, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		obs.Logger.Warn("cache_disabled", "error", err)
		return nil, nil
	}
	obs.Logger.Info("cache_connected", "addr", cfg.RedisAddr, "ttl_sec", cfg.CacheTTL.Seconds())
	return rc, func(context.Context) error { return rc.Close() }
}

func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(obs.Logger)
	}
	obs.Logger.Info("event_publisher_kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		obs.Logger.Warn("env_file_not_loaded", "error", err)
	}
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore := openStore(ctx, cfg)
	c, closeCache := openCache(ctx, cfg)

	pub := newPublisher(cfg)
	d := events.NewDispatcher(events.NewQueue(cfg.EventQueueBuffer), pub, cfg.EventWorkers, cfg.EventQueueHighWatermark)
	d.Start(ctx)

	svc := catalog.New(st, catalog.WithCache(c), catalog.WithEvents(d))
	svc.RunStartupMaintenance(ctx, cfg.SeedSampleData).Log(obs.Logger)

	app := httpapi.NewApp(cfg, svc, d)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr, "database_connected", svc.Connected())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	d.CloseIntake()
	m := d.Metrics()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", m.Backlog, "queue_depth", m.Depth)
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := d.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}
	d.Stop()
	if err := pub.Close(); err != nil {
		obs.Logger.Warn("event_publisher_close_failed", "error", err)
	}

	ctxClose, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelClose()
	for _, fn := range []closer{closeCache, closeStore} {
		if fn == nil {
			continue
		}
		if err := fn(ctxClose); err != nil {
			obs.Logger.Warn("resource_close_failed", "error", err)
		}
	}
	obs.Logger.Info("service_stopped")
}
