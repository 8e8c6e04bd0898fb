package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/SChris-dev/EcoShop-API/cmd"
	"github.com/SChris-dev/EcoShop-API/config"
	"github.com/SChris-dev/EcoShop-API/infrastructure/messaging"
	"github.com/SChris-dev/EcoShop-API/infrastructure/messaging/kafka"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence/gormdb"
	"github.com/SChris-dev/EcoShop-API/pkg/logger"
	"github.com/SChris-dev/EcoShop-API/pkg/metrics"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Worker.Enabled {
		logger.Info("Outbox worker is disabled by config; exiting")
		return nil
	}
	if !cfg.UsesSQL() {
		logger.Info("Outbox worker needs a SQL database; in-memory mode publishes in process")
		return nil
	}

	db, err := cmd.ConnectDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = gormdb.Close(db) }()

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	worker, err := gormdb.NewOutboxWorker(
		gormdb.NewOutboxRepository(db),
		publisher,
		cfg.Worker.PollInterval,
		cfg.Worker.BatchSize,
		cfg.Worker.MaxRetries,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}
	if cfg.Metrics.Enabled {
		worker.SetRecorder(metrics.NewServerMetrics(cfg.Metrics.Namespace))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Outbox worker started",
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
	)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker exited with error: %w", err)
	}

	logger.Info("Outbox worker stopped")
	return nil
}

// newPublisher picks Kafka when brokers are configured, the log otherwise.
func newPublisher(cfg *config.Config) (messaging.Publisher, func(), error) {
	brokers := kafka.ParseBrokers(strings.Join(cfg.Kafka.Brokers, ","))
	if len(brokers) == 0 {
		logger.Info("No Kafka brokers configured; logging outbox events")
		return &messaging.LoggingPublisher{}, func() {}, nil
	}

	p, err := kafka.NewPublisher(brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka publisher: %w", err)
	}
	logger.Info("Publishing outbox events to Kafka",
		zap.Strings("brokers", brokers),
		zap.String("topic", cfg.Kafka.Topic))

	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn("Failed to close kafka writer", zap.Error(err))
		}
	}, nil
}
