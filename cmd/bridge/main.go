package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tronix365/sensorbridge/internal/api"
	"github.com/tronix365/sensorbridge/internal/config"
	"github.com/tronix365/sensorbridge/internal/control"
	"github.com/tronix365/sensorbridge/internal/gateway"
	"github.com/tronix365/sensorbridge/internal/gateway/websocket"
	"github.com/tronix365/sensorbridge/internal/session"
	"github.com/tronix365/sensorbridge/internal/store"
	"github.com/tronix365/sensorbridge/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Logger initialisieren
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// .env laden (optional, wie beim Dev-Setup des Dashboards)
	if err := godotenv.Load(); err == nil {
		logger.Info("Environment loaded from .env")
	}

	configPath := os.Getenv("SB_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Config loaded successfully",
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Duration("poll_interval", cfg.Telemetry.PollInterval))

	// Upstream client + session
	client := api.NewClient(cfg.Upstream.BaseURL,
		api.WithTimeout(cfg.Upstream.Timeout),
		api.WithLogger(logger))

	sess := session.NewManager(client, session.NewTokenFile(cfg.Session.TokenFile), logger)
	client.SetTokenSource(sess)

	// View model + engines
	st := store.New(cfg.Telemetry.AnalogMax, logger)
	watcher := telemetry.NewWatcher(client, st, cfg.Telemetry.PollInterval, cfg.Telemetry.HistoryLimit, logger)
	ctl := control.NewService(client, st, logger)

	// Live stream hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	st.OnUpdate(func(view store.DeviceView) {
		wsHub.Broadcast(websocket.NewDeviceViewMessage(view))
	})
	sess.OnChange(func(snap session.Snapshot) {
		wsHub.Broadcast(websocket.NewSessionStateMessage(snap))
	})

	// Persistierte Session wiederherstellen
	if err := sess.Restore(context.Background()); err != nil {
		logger.Warn("Session restore did not settle", zap.Error(err))
	}

	srv := gateway.NewServer(cfg, sess, watcher, st, ctl, client, wsHub, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start gateway", zap.Error(err))
	}

	logger.Info("SensorBridge started successfully")

	// Graceful Shutdown auf Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	watcher.Unwatch()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("SensorBridge stopped successfully")
}
