package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-countdown/internal/clock"
	"github.com/KasumiMercury/primind-countdown/internal/config"
	"github.com/KasumiMercury/primind-countdown/internal/handler"
	"github.com/KasumiMercury/primind-countdown/internal/health"
	"github.com/KasumiMercury/primind-countdown/internal/infra/eventrecorder"
	"github.com/KasumiMercury/primind-countdown/internal/observability/logging"
	"github.com/KasumiMercury/primind-countdown/internal/observability/metrics"
	"github.com/KasumiMercury/primind-countdown/internal/observability/middleware"
	"github.com/KasumiMercury/primind-countdown/internal/scheduler"
	"github.com/KasumiMercury/primind-countdown/internal/service/engine"
	"github.com/KasumiMercury/primind-countdown/internal/service/permission"
	"github.com/KasumiMercury/primind-countdown/internal/service/reconcile"
	"github.com/KasumiMercury/primind-countdown/internal/service/store"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	loadEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	reminderMetrics, err := metrics.NewReminderMetrics()
	if err != nil {
		slog.Error("failed to initialize reminder metrics", slog.String("error", err.Error()))
		return 1
	}

	// InfluxDB for local, BigQuery for gcloud
	recorder, err := eventrecorder.NewRecorder(ctx, eventrecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize reminder event recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close reminder event recorder", slog.String("error", err.Error()))
		}
	}()

	blobs, closeBlobs, err := initBlobStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize storage", slog.String("error", err.Error()))
		return 1
	}
	defer closeBlobs()

	clk := clock.System{}

	reminders := store.NewReminderStore(blobs, clk)
	if err := reminders.Load(ctx); err != nil {
		slog.Error("failed to load reminders", slog.String("error", err.Error()))
		return 1
	}
	settings := store.NewSettingsStore(blobs, cfg.Reminder.DefaultDeferTo)

	sink, telegram, err := initAlertSink(cfg)
	if err != nil {
		slog.Error("failed to initialize alert sink", slog.String("error", err.Error()))
		return 1
	}

	gate := permission.NewGate(settings, sink)

	port, closePort, err := initAlarmPort(ctx, cfg, gate, blobs, clk)
	if err != nil {
		slog.Error("failed to initialize alarm port", slog.String("error", err.Error()))
		return 1
	}
	defer closePort()

	// Engine and loop mutate the same reminders and must never interleave.
	serial := &sync.Mutex{}

	reminderEngine := engine.NewEngine(
		reminders,
		settings,
		port,
		gate,
		recorder,
		reminderMetrics,
		clk,
		serial,
		engine.Options{
			MinDurationMinutes:   cfg.Reminder.MinDurationMinutes,
			MaxDurationMinutes:   cfg.Reminder.MaxDurationMinutes,
			DefaultSnoozeMinutes: cfg.Reminder.DefaultSnoozeMinutes,
			Location:             cfg.Location,
			AlarmTitle:           cfg.Reminder.AlarmTitle,
		},
	)

	loop := reconcile.NewLoop(reminders, port, sink, recorder, reminderMetrics, clk, serial, reconcile.Config{
		Interval:   cfg.Reminder.TickInterval,
		AlarmTitle: cfg.Reminder.AlarmTitle,
	})

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := loop.Run(ctx); err != nil {
			slog.Error("reconciliation loop exited", slog.String("error", err.Error()))
		}
	}()

	cleanup := scheduler.New(reminderEngine, cfg.Reminder.CleanupSchedule, cfg.Location)
	if err := cleanup.Start(ctx); err != nil {
		slog.Error("failed to start cleanup scheduler", slog.String("error", err.Error()))
		return 1
	}
	defer cleanup.Stop()

	if telegram != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := telegram.Listen(ctx, reminderEngine.HandleAction); err != nil {
				slog.Error("telegram listener exited", slog.String("error", err.Error()))
			}
		}()
	}

	reminderHandler := handler.NewReminderHandler(reminderEngine, clk, cfg.Reminder.DefaultSnoozeMinutes)
	settingsHandler := handler.NewSettingsHandler(settings, gate)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      logging.Module("countdown"),
		TracerName:  "github.com/KasumiMercury/primind-countdown/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(Version, reminderEngine.Mode().String()).
		Register("storage", blobs).
		Register("reconcile_loop", health.RunningFunc(loop.Running))
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	v1 := r.Group("/api/v1")
	reminderHandler.RegisterRoutes(v1)
	settingsHandler.RegisterRoutes(v1)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("delivery_mode", cfg.DeliveryMode.String()),
			slog.String("storage", string(cfg.Storage.Backend)),
			slog.String("timezone", cfg.Location.String()),
			slog.Duration("tick_interval", cfg.Reminder.TickInterval),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}
		workers.Wait()

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		cancel()
		workers.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
