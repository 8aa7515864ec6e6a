package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/staffdir/api"
	"github.com/garnizeh/staffdir/internal/assets"
	"github.com/garnizeh/staffdir/internal/auth"
	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/directory"
	"github.com/garnizeh/staffdir/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting staffdir server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", slog.String("driver", cfg.Database.Driver), slog.Any("err", err))
		os.Exit(1)
	}

	files, err := assets.Open(ctx, assets.Config{
		Driver: assets.Driver(cfg.Assets.Driver),
		Root:   cfg.Assets.Root,
		S3: assets.S3Config{
			Bucket:          cfg.Assets.S3.Bucket,
			Region:          cfg.Assets.S3.Region,
			Endpoint:        cfg.Assets.S3.Endpoint,
			PathStyle:       cfg.Assets.S3.PathStyle,
			AccessKeyID:     cfg.Assets.S3.AccessKeyID,
			SecretAccessKey: cfg.Assets.S3.SecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to open asset store", slog.String("driver", cfg.Assets.Driver), slog.Any("err", err))
		backend.Close()
		os.Exit(1)
	}

	svc := directory.NewService(backend.Employees,
		directory.WithLogger(logger),
		directory.WithPageSizes(cfg.Directory.DefaultPageSize, cfg.Directory.MaxPageSize),
	)
	provider := auth.NewProvider(backend.Users, cfg.JWTSecret, cfg.TokenDuration)

	handler := api.SetupRoutes(cfg, version, buildTime, api.Deps{
		Directory: svc,
		Auth:      provider,
		Assets:    files,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	if err := files.Close(); err != nil {
		logger.Warn("error closing asset store", slog.Any("err", err))
	}
	if err := backend.Close(); err != nil {
		logger.Warn("error closing database", slog.Any("err", err))
	}

	logger.Info("server exited")
}
