package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/config"
	"github.com/KasumiMercury/primind-countdown/internal/domain"
	"github.com/KasumiMercury/primind-countdown/internal/infra/alertsink"
	"github.com/KasumiMercury/primind-countdown/internal/infra/blobstore"
	"github.com/KasumiMercury/primind-countdown/internal/service/alarm"
)

func initBlobStore(ctx context.Context, cfg *config.Config) (domain.BlobStore, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		slog.Warn("using in-memory storage, reminders will not survive a restart")
		return blobstore.NewMemoryStore(), noop, nil

	case config.StorageSQLite:
		s, err := blobstore.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("storage initialized", slog.String("type", "sqlite"), slog.String("path", cfg.Storage.SQLitePath))
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Warn("failed to close sqlite store", slog.String("error", err.Error()))
			}
		}, nil

	case config.StorageRedis:
		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return blobstore.NewRedisStore(client), func() {
			if err := client.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}, nil

	default:
		s, err := blobstore.NewDiskStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("storage initialized", slog.String("type", "disk"), slog.String("path", cfg.Storage.Path))
		return s, noop, nil
	}
}

func newRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(opts)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	slog.Info("redis connected", slog.String("addr", cfg.Addr))

	return redisClient, nil
}

// initAlertSink returns the telegram sink as well when it is configured so
// main can start its callback listener.
func initAlertSink(cfg *config.Config) (domain.AlertSink, *alertsink.TelegramSink, error) {
	if !cfg.Telegram.Enabled() {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, alerts are written to the log only")
		return alertsink.NewLogSink(), nil, nil
	}

	tg, err := alertsink.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		return nil, nil, err
	}
	return tg, tg, nil
}

func initAlarmPort(ctx context.Context, cfg *config.Config, gate domain.PermissionGate, blobs domain.BlobStore, clk clock.Clock) (domain.AlarmPort, func(), error) {
	noop := func() {}

	if cfg.DeliveryMode != domain.DeliveryDurable {
		slog.Info("alarm port initialized", slog.String("mode", domain.DeliveryImmediate.String()))
		return alarm.NewImmediate(gate, clk), noop, nil
	}

	queue, cleanup, err := initTaskQueue(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if queue == nil {
		return nil, nil, fmt.Errorf("durable delivery requires a task queue")
	}

	port := alarm.NewDurable(queue, gate, blobs, clk)
	if err := port.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to load alarm registry: %w", err)
	}

	slog.Info("alarm port initialized",
		slog.String("mode", domain.DeliveryDurable.String()),
		slog.Int("pending_alarms", len(port.PendingIDs())),
	)

	closeQueue := noop
	if cleanup != nil {
		closeQueue = func() {
			if err := cleanup(); err != nil {
				slog.Error("task queue cleanup error", slog.String("error", err.Error()))
			}
		}
	}
	return port, closeQueue, nil
}
