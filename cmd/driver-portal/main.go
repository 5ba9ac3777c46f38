// The driver-portal binary serves the public driver statement portal.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"payportal/internal/amqp"
	"payportal/internal/auth"
	"payportal/internal/backend"
	"payportal/internal/config"
	apphttp "payportal/internal/http"
	"payportal/internal/log"
	"payportal/internal/store"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentApp})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
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

	// Drivers tolerate staler data than the back office, so this portal
	// runs its own, longer cache TTL.
	records := store.NewCache(result.Source, cfg.DriverCacheTTL, cfg.FetchTimeout)
	sessions := auth.NewSessionStore(cfg.SessionTTL)
	srv := apphttp.NewDriverServer(":"+cfg.Port, records, sessions, logger)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("amqp initialization failed", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeSnapshots(ctx, func(msg *amqp.SnapshotMessage) error {
				records.Invalidate()
				return nil
			})
			if err != nil && err != context.Canceled {
				logger.Error("snapshot consumer stopped", log.FieldError, err)
			}
		}()
		logger.Info("snapshot event consumer started", "queue", cfg.AMQPQueue)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting driver portal", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
