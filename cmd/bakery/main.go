package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"bakery/internal/amqp"
	"bakery/internal/backend"
	"bakery/internal/cli"
	apphttp "bakery/internal/http"
	"bakery/internal/log"
	"bakery/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, nil)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)

	store, err := factory.OpenStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open storage", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	listCache, closeCache, err := factory.OpenCache(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open cache", log.FieldError, err, "cache", cfg.CacheBackend)
		store.Close()
		os.Exit(1)
	}
	defer closeCache()

	opts := []services.Option{services.WithLogger(logger)}
	if listCache != nil {
		opts = append(opts, services.WithCache(listCache))
	}

	// Events are optional: without AMQP_URL the sheet mirror simply never hears about writes.
	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			store.Close()
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, services.WithPublisher(publisher))
		logger.Info("AMQP publisher enabled", "exchange", cfg.AMQPExchange)
	}

	svc := services.NewTransactionService(store, opts...)
	defer svc.Close()

	if cfg.SeedOnEmpty {
		seeded, err := svc.SeedIfEmpty(ctx)
		if err != nil {
			logger.Error("Seeding sample transactions failed", log.FieldError, err, log.FieldOperation, log.OpSeed)
		} else if seeded {
			logger.Info("Seeded sample transactions", log.FieldOperation, log.OpSeed)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSOrigins,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting bakery server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"cache", cfg.CacheBackend,
			"cors_origins", strings.Join(cfg.CORSOrigins, ","),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
