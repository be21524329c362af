package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/firewatch/internal/alerts"
	"github.com/your-org/firewatch/internal/api"
	"github.com/your-org/firewatch/internal/api/handlers"
	"github.com/your-org/firewatch/internal/api/ws"
	"github.com/your-org/firewatch/internal/config"
	"github.com/your-org/firewatch/internal/media"
	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/observability"
	"github.com/your-org/firewatch/internal/queue"
	"github.com/your-org/firewatch/internal/registry"
	"github.com/your-org/firewatch/internal/session"
	"github.com/your-org/firewatch/internal/storage"
	"github.com/your-org/firewatch/internal/users"
)

func openKV(cfg *config.Config) (storage.KV, handlers.Pinger, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		kv, err := storage.NewRedisKV(cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, kv, func() { _ = kv.Close() }, nil
	case "postgres":
		kv, err := storage.NewPostgresKV(cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, kv, kv.Close, nil
	case "memory":
		kv := storage.NewMemoryKV()
		return kv, nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting firewatch monitor", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)

	// Backing key-value store
	kv, pinger, closeKV, err := openKV(cfg)
	if err != nil {
		slog.Error("open backing store", "error", err)
		os.Exit(1)
	}
	defer closeKV()

	// MinIO for alert snapshots (optional)
	var minioStore *storage.MinIOStore
	if cfg.MinIO.Endpoint != "" {
		minioStore, err = storage.NewMinIOStore(cfg.MinIO)
		if err != nil {
			slog.Error("connect to minio", "error", err)
			os.Exit(1)
		}
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			slog.Warn("ensure minio bucket", "error", err)
		}
	} else {
		slog.Warn("minio not configured, alert snapshots disabled")
	}

	// NATS for alert intake
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStream(context.Background()); err != nil {
		slog.Warn("ensure nats stream", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core components
	reg := registry.New(ctx, kv)
	feed := alerts.NewFeed()
	userMgr := users.NewManager(kv, cfg.Auth.LoginTimeout)
	sessionMgr := session.NewManager(func() session.Player {
		return media.NewFFmpegPlayer(cfg.Media)
	})

	// WebSocket hub for live alert push
	hub := ws.NewHub()
	go hub.Run(ctx)

	var snapshots alerts.SnapshotStore
	if minioStore != nil {
		snapshots = minioStore
	}
	intake := alerts.NewIntake(feed, snapshots, hub.BroadcastAlert)

	// Consume alerts from the detection source
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create alert consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	err = consumer.ConsumeAlerts(ctx, "monitor-alerts", func(ctx context.Context, msg jetstream.Msg) error {
		var m models.AlertMessage
		if err := json.Unmarshal(msg.Data(), &m); err != nil {
			return fmt.Errorf("decode alert message: %w", err)
		}
		_, err := intake.Handle(ctx, m)
		return err
	})
	if err != nil {
		slog.Warn("start alert consumer", "error", err)
	}

	router := api.NewRouter(api.RouterConfig{
		APIKey:   cfg.Server.APIKey,
		KV:       pinger,
		Registry: reg,
		Feed:     feed,
		Sessions: sessionMgr,
		Users:    userMgr,
		MinIO:    minioStore,
		Producer: producer,
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("monitor listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down monitor...")
	cancel()
	sessionMgr.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("monitor stopped")
}
