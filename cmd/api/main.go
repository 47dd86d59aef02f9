package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veriface/veriface/internal/api"
	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/detector/remote"
	"github.com/veriface/veriface/internal/face"
	"github.com/veriface/veriface/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local overrides; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Veriface API",
		slog.String("environment", cfg.Environment),
		slog.String("detector", cfg.DetectorType),
		slog.Int("port", cfg.Port),
	)

	det, err := face.NewDetector(cfg)
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}

	// Remote detectors load their model behind a health probe; warm up once
	// before serving so requests never hit a half-initialized backend.
	if remoteDet, ok := det.(*remote.Detector); ok {
		warmupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := remoteDet.Warmup(warmupCtx); err != nil {
			return fmt.Errorf("detector warmup: %w", err)
		}
		logger.Info("detector warmed up", slog.String("url", cfg.DetectorURL))
	}

	faceService := service.NewFaceService(det, logger).
		WithThresholds(cfg.MatchThreshold, cfg.RankThreshold)

	router := api.NewRouter(logger, &api.Dependencies{
		FaceService: faceService,
	})
	router.Setup()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
