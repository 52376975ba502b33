package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DetectorHTTP   = "http"
	DetectorOllama = "ollama"

	CameraGoCV = "gocv"
	CameraPush = "push"
)

type Config struct {
	TelegramToken string // bot is disabled when empty
	HTTPAddr      string

	DetectorBackend string
	DetectorURL     string
	OllamaURL       string
	OllamaModel     string

	CameraBackend string
	CameraDevice  int
	FrameMaxSide  int

	PollInterval      time.Duration
	DetectTimeout     time.Duration // bound on one capture/detect cycle
	CoverageThreshold float64       // percent
	DeadZone          float64       // fraction of the frame size

	LogLevel string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:        envString("HTTP_ADDR", ":8080"),
		DetectorBackend: envString("DETECTOR_BACKEND", DetectorHTTP),
		DetectorURL:     os.Getenv("DETECTOR_URL"),
		OllamaURL:       envString("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     envString("OLLAMA_MODEL", "llava"),
		CameraBackend:   envString("CAMERA_BACKEND", CameraPush),
		LogLevel:        envString("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.CameraDevice, err = envInt("CAMERA_DEVICE", 0); err != nil {
		return nil, err
	}
	if cfg.FrameMaxSide, err = envInt("FRAME_MAX_SIDE", 1024); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.DetectTimeout, err = envDuration("DETECT_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CoverageThreshold, err = envFloat("COVERAGE_THRESHOLD", 75); err != nil {
		return nil, err
	}
	if cfg.DeadZone, err = envFloat("DEAD_ZONE", 0.1); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and backend-specific requirements.
func (c *Config) Validate() error {
	var errs []error

	switch c.DetectorBackend {
	case DetectorHTTP:
		if c.DetectorURL == "" {
			errs = append(errs, errors.New("DETECTOR_URL is required for the http detector"))
		}
	case DetectorOllama:
		if c.OllamaModel == "" {
			errs = append(errs, errors.New("OLLAMA_MODEL is required for the ollama detector"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DETECTOR_BACKEND %q", c.DetectorBackend))
	}

	if c.CameraBackend != CameraGoCV && c.CameraBackend != CameraPush {
		errs = append(errs, fmt.Errorf("unknown CAMERA_BACKEND %q", c.CameraBackend))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	if c.DetectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DETECT_TIMEOUT must be positive, got %s", c.DetectTimeout))
	}
	if c.CoverageThreshold < 0 || c.CoverageThreshold > 100 {
		errs = append(errs, fmt.Errorf("COVERAGE_THRESHOLD must be within [0,100], got %g", c.CoverageThreshold))
	}
	if c.DeadZone < 0 || c.DeadZone >= 0.5 {
		errs = append(errs, fmt.Errorf("DEAD_ZONE must be within [0,0.5), got %g", c.DeadZone))
	}
	if c.FrameMaxSide < 0 {
		errs = append(errs, fmt.Errorf("FRAME_MAX_SIDE must not be negative, got %d", c.FrameMaxSide))
	}

	return errors.Join(errs...)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
