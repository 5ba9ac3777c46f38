// The snapshot-worker binary periodically mirrors the live payments table
// into the local SQLite snapshot and announces each refresh over AMQP.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"payportal/internal/amqp"
	"payportal/internal/backend"
	"payportal/internal/config"
	"payportal/internal/log"
	"payportal/internal/storage"
	"payportal/internal/worker"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.DataBackend == "sqlite" {
		logger.Error("snapshot worker must read from a live backend, not the snapshot itself",
			log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := backend.NewFactory(logger.Logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("backend initialization failed", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	snapshots, err := storage.NewSnapshotRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("snapshot repository initialization failed", log.FieldError, err, "db_path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer snapshots.Close()

	var publisher worker.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("amqp initialization failed", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("no AMQP URL configured, refresh events disabled")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	w := worker.NewSnapshotWorker(result.Source, snapshots, publisher, cfg.DataBackend, logger)
	logger.Info("starting snapshot worker",
		log.FieldBackend, cfg.DataBackend,
		"interval", cfg.SnapshotInterval.String(),
		"db_path", cfg.SQLiteDBPath,
	)
	if err := w.Run(ctx, cfg.SnapshotInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
