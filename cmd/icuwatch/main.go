package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"icuwatch/internal/api"
	"icuwatch/internal/audit"
	"icuwatch/internal/config"
	"icuwatch/internal/inference"
	"icuwatch/internal/ingest"
	"icuwatch/internal/logging"
	"icuwatch/internal/model"
	"icuwatch/internal/monitor"
	"icuwatch/internal/storage"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("ICUWATCH_CONFIG"), "path to config file (yaml or json)")
	flag.Parse()

	var manager *config.Manager
	if *configPath != "" {
		m, err := config.NewManager(config.ResolvePath(*configPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		manager = m
	} else {
		manager = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := manager.Get()

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFile)
	logger.Info("icuwatch starting", "version", version, "patients", cfg.Monitor.PatientCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	if store != nil {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		err = store.Init(initCtx)
		initCancel()
		if err != nil {
			logger.Error("storage schema init failed", "err", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	mdl := inference.NewStub()
	auditStore := audit.NewStore(cfg.Audit.StoreLimit)
	registry := monitor.NewRegistry(cfg, logger, mdl, auditStore, store)
	registry.Seed(time.Now().UTC())
	if err := registry.RestoreRules(ctx); err != nil {
		logger.Warn("restore rule overrides failed", "err", err)
	}

	scheduler := monitor.NewScheduler(registry, cfg.Monitor.UpdateInterval, logger)
	scheduler.Start(ctx)

	observations := make(chan model.Observation, cfg.Ingest.ChannelBuffer)
	ingest.StartKafka(ctx, manager, observations, logger)
	ingest.StartRouter(ctx, observations, registry, logger)

	api.Start(ctx, manager, registry, auditStore, mdl, logger, version)

	if manager.Path() != "" {
		stop := make(chan struct{})
		defer close(stop)
		go manager.Watch(3*time.Second, func(updated *config.Config) {
			logger.Info("config reloaded")
			registry.UpdateConfig(updated)
		}, func(err error) {
			logger.Warn("config reload failed", "err", err)
		}, stop)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutdown signal received")
	cancel()
}
