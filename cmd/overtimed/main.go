package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/config"
	"github.com/RoberaET/overtime-clock/internal/api"
	"github.com/RoberaET/overtime-clock/internal/archive"
	"github.com/RoberaET/overtime-clock/internal/db"
	"github.com/RoberaET/overtime-clock/internal/logger"
	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/notify"
	"github.com/RoberaET/overtime-clock/internal/pay"
	"github.com/RoberaET/overtime-clock/internal/scheduler"
	"github.com/RoberaET/overtime-clock/internal/session"
	"github.com/RoberaET/overtime-clock/internal/tracking"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()
	log.Info("configuration loaded", zap.String("path", configPath))

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	archiveStore := archive.NewGormStore(gormDB)

	multipliers := pay.Defaults()
	for t, v := range cfg.Multipliers {
		if v > 0 {
			multipliers[model.OvertimeType(t)] = v
		}
	}

	tracker := tracking.NewTracker()
	sessions := session.NewStore(tracker, nil)
	hub := notify.NewHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifiers := []scheduler.Notifier{hub}

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notify.NewWorkerPool(cfg.WorkerPool.Size, archiveStore, webpushOptions, log)
		pool.Start(ctx)
		notifiers = append(notifiers, pool)
	} else {
		log.Warn("VAPID keys not configured, web push disabled")
	}

	sched := scheduler.New(sessions, archiveStore, log, notifiers...)
	sched.SetInterval(cfg.Tick.Interval)
	go sched.Run(ctx)

	handler := api.NewHandler(sessions, tracker, archiveStore, cfg.Limits, multipliers, webpushOptions, log)
	router := api.NewRouter(handler, hub, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown", zap.Error(err))
	}

	log.Info("server gracefully stopped")
}
