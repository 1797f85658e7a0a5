package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/internal/server"
	"github.com/Ramsey-B/fern/pkg/analytics"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/repositories"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.sync()

	return a.serve(cmd.Context())
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	shutdownTracing, err := tracing.Setup(ctx, tracing.ProviderConfig{
		ServiceName: cfg.AppName,
		Export:      cfg.OTLPEnabled,
		OTLP: exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
			Headers:  cfg.OTLPHeaders,
			Timeout:  cfg.OTLPTimeout,
		},
	})
	if err != nil {
		return err
	}

	db, err := a.openDatabase()
	if err != nil {
		return err
	}

	var emitter events.ToolEmitter = events.NoopEmitter{}
	manager := startup.NewManager(logger, cfg.StartupMaxAttempts)
	manager.Add(startup.Func{
		Name:    "database",
		OnStart: db.PingContext,
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	if cfg.DatabaseAutoMigrate {
		manager.Add(startup.Func{
			Name:     "migrations",
			Requires: []string{"database"},
			OnStart: func(ctx context.Context) error {
				return a.migrator(-1, -1).Migrate(ctx, db)
			},
		})
	}
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafka.Config{
			Brokers:      kafka.ParseBrokers(cfg.KafkaBrokers),
			Topic:        cfg.KafkaToolEventsTopic,
			WriteTimeout: cfg.KafkaWriteTimeout,
		}, logger)
		emitter = events.NewEmitter(producer, logger)
		manager.Add(startup.Func{
			Name: "kafka",
			OnStop: func(context.Context) error {
				return producer.Close()
			},
		})
	}

	if err := manager.Start(ctx); err != nil {
		_ = manager.Stop(context.Background())
		_ = shutdownTracing(context.Background())
		return err
	}

	checker := health.NewChecker(db, cfg.DatabasePingTimeout)
	e := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Tools:   repositories.NewToolRepository(db, logger),
		Reports: analytics.NewEngine(repositories.NewAnalyticsRepository(db, logger), logger),
		Events:  emitter,
		Health:  checker,
	})
	srv := server.NewHTTPServer(cfg, e, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	checker.SetReady(true)

	select {
	case err = <-errCh:
		if err != nil {
			logger.WithError(err).Error("HTTP server stopped")
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WithError(shutdownErr).Error("Failed to shut down HTTP server")
	}
	if stopErr := manager.Stop(shutdownCtx); stopErr != nil && err == nil {
		err = stopErr
	}
	if traceErr := shutdownTracing(shutdownCtx); traceErr != nil {
		logger.WithError(traceErr).Warn("Failed to flush traces")
	}

	return err
}
