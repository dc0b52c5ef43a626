package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carbonintensity/internal/adapter/kafka"
	"carbonintensity/internal/config"
	"carbonintensity/internal/handler"
	"carbonintensity/internal/hub"
	"carbonintensity/internal/loader"
	"carbonintensity/internal/observability"
	"carbonintensity/internal/repository"
	"carbonintensity/internal/repository/postgres"
	"carbonintensity/internal/repository/sqlite"
	"carbonintensity/internal/service"
)

// store is what the server needs from a backend
type store interface {
	repository.Repository
	repository.Importer
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "carbon-intensity: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Command line flags
	configPath := flag.String("config", "", "config file path (overrides search)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	seedPath := flag.String("seed", "", "CSV or YAML file to import at startup")
	writeConfig := flag.Bool("write-config", false, "write the effective config to the default location and exit")
	flag.Parse()

	cfg, usedPath, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *seedPath != "" {
		cfg.Seed.Path = *seedPath
	}

	if *writeConfig {
		path := config.DefaultConfigPath()
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	if usedPath != "" {
		logger.Info("config loaded", "path", usedPath)
	}
	logger.Info("starting carbon-intensity server", "config", cfg.Summary())

	metrics := observability.NewMetrics()

	repo, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer repo.Close()
	logger.Info("database opened", "driver", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Seed.Path != "" {
		if _, err := loader.Seed(ctx, repo, cfg.Seed.Path, logger, metrics); err != nil {
			return err
		}
	}

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	sseHub := hub.New(logger, metrics)
	go sseHub.Run()
	defer sseHub.Stop()

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Optional Kafka change feed
	if cfg.Events.KafkaEnabled() {
		publisher := kafka.NewPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, logger, metrics)
		publisher.Attach(eventBus)
		go publisher.Run(ctx)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close kafka publisher", "error", err)
			}
		}()
		logger.Info("kafka change feed enabled", "topic", cfg.Events.KafkaTopic)
	}

	intensitySvc := service.NewIntensityService(repo, eventBus, metrics, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Intensities: handler.NewIntensityHandler(intensitySvc, logger),
		Events:      sseHub,
		Store:       repo,
		Metrics:     metrics,
		Logger:      logger,
		CORSOrigin:  cfg.Server.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	// SSE streams never finish on their own
	sseHub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(db config.DatabaseConfig) (store, error) {
	switch db.Driver {
	case config.DriverPostgres:
		return postgres.Open(postgres.Options{
			Host:     db.Host,
			Port:     db.Port,
			User:     db.User,
			Password: db.Password,
			DBName:   db.Name,
			SSLMode:  db.SSLMode,
			TimeZone: db.TimeZone,
		})
	case config.DriverSQLite:
		return sqlite.New(db.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", db.Driver)
	}
}
