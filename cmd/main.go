package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"frame-guide/config"
	telegram "frame-guide/internal/api"
	"frame-guide/internal/api/web"
	"frame-guide/internal/container"
	"frame-guide/internal/domain/port"
	"frame-guide/internal/infrastructure/detection"
	"frame-guide/internal/infrastructure/storage"
	"frame-guide/internal/infrastructure/vision"
	"frame-guide/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("frame-guide stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	detector, err := newDetector(cfg)
	if err != nil {
		return err
	}

	opts := container.Options{
		Subscribers: storage.NewMemorySubscriberRepository(),
		Detector:    detector,
		Preparer:    vision.NewFramePreparer(cfg.FrameMaxSide),
		Threshold:   cfg.CoverageThreshold,
		DeadZone:    cfg.DeadZone,
		Interval:    cfg.PollInterval,
		Timeout:     cfg.DetectTimeout,
	}

	switch cfg.CameraBackend {
	case config.CameraGoCV:
		cam := vision.NewGoCVCamera(cfg.CameraDevice)
		defer cam.Close()
		opts.Camera = cam
	default:
		cam := vision.NewSnapshotCamera()
		opts.Camera = cam
		opts.Sink = cam
	}

	appContainer := container.New(opts)

	server := web.NewServer(appContainer)
	appContainer.Notifiers.Add(server)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			return err
		}
		appContainer.Notifiers.Add(bot)
		g.Go(func() error { return bot.Run(ctx) })
	} else {
		log.Warn("TELEGRAM_TOKEN is not set, telegram bot disabled")
	}

	g.Go(func() error { return server.Run(ctx, cfg.HTTPAddr) })
	g.Go(func() error {
		if err := appContainer.Loop.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	log.Info("frame-guide is running",
		"camera", cfg.CameraBackend,
		"detector", cfg.DetectorBackend,
		"http", cfg.HTTPAddr,
	)
	return g.Wait()
}

func newDetector(cfg *config.Config) (port.ObjectDetector, error) {
	switch cfg.DetectorBackend {
	case config.DetectorOllama:
		return detection.NewOllamaDetector(cfg.OllamaURL, cfg.OllamaModel, nil)
	default:
		return detection.NewHTTPDetector(cfg.DetectorURL, nil), nil
	}
}
