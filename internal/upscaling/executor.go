package upscaling

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"upscale/internal/config"
	"upscale/internal/logging"
	"upscale/internal/services"
	"upscale/internal/services/upscaler"
)

// Executor performs one submit, poll, download cycle against the remote
// service. Passes are strictly serial: the service handles one job at a time
// per client identifier, and each pass consumes the previous pass's output.
type Executor struct {
	cfg          *config.Config
	logger       *slog.Logger
	client       upscaler.Client
	pollInterval time.Duration
	maxAttempts  int
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithClient overrides the service client, typically with a test double.
func WithClient(client upscaler.Client) ExecutorOption {
	return func(e *Executor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithPollInterval overrides the wait between listing polls.
func WithPollInterval(interval time.Duration) ExecutorOption {
	return func(e *Executor) {
		if interval > 0 {
			e.pollInterval = interval
		}
	}
}

// NewExecutor constructs a pass executor from configuration.
func NewExecutor(cfg *config.Config, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "upscaling"),
		client:       upscaler.NewHTTPClient(cfg.Service.BaseURL, time.Duration(cfg.Service.RequestTimeout)*time.Second),
		pollInterval: time.Duration(cfg.Service.PollInterval) * time.Second,
		maxAttempts:  cfg.Service.MaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunPass submits inputPath for magnification under clientID, polls until a
// completed entry appears, downloads it, and writes the bytes to a fresh
// path in the staging directory namespaced by pass index and image name.
//
// The service offers no per-job handle, so the most recent completed entry
// for the client is taken as this pass's result. Leftover completed jobs
// from earlier runs under the same identifier can therefore be picked up in
// place of the fresh submission; reusing an identifier assumes its job
// history is drained.
func (e *Executor) RunPass(ctx context.Context, pass int, inputPath, imageName, clientID string) (string, error) {
	logger := logging.WithContext(ctx, e.logger)
	logger.Info(
		"submitting pass",
		logging.Int(logging.FieldPass, pass),
		logging.String("input", inputPath),
		logging.String("client_id", clientID),
		logging.Bool("face_enhance", e.cfg.Service.FaceEnhance),
	)

	if err := e.client.Submit(ctx, inputPath, clientID, e.cfg.Service.Scale, e.cfg.Service.FaceEnhance); err != nil {
		return "", err
	}

	resultURL, err := e.awaitCompletion(ctx, logger, clientID)
	if err != nil {
		return "", err
	}

	data, err := e.client.Download(ctx, resultURL)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(e.cfg.Paths.StagingDir, fmt.Sprintf("upscaled_%d_%s", pass, imageName))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "upscaling", "write result",
			"Could not create staging directory", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, "upscaling", "write result",
			"Could not write pass result to staging", err)
	}

	logger.Info(
		"pass completed",
		logging.Int(logging.FieldPass, pass),
		logging.String("output", outputPath),
	)
	return outputPath, nil
}

// awaitCompletion polls the listing endpoint until a completed entry appears
// or the attempt budget is exhausted. Listing failures consume an attempt
// and polling continues; only budget exhaustion is a timeout.
func (e *Executor) awaitCompletion(ctx context.Context, logger *slog.Logger, clientID string) (string, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		listing, err := e.client.List(ctx, clientID)
		if err != nil {
			logger.Warn(
				"listing poll failed",
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
		} else if entry, ok := listing.LatestCompleted(); ok {
			url := strings.TrimSpace(entry.URL)
			if url == "" {
				return "", services.Wrap(services.ErrUpstream, "upscaling", "poll",
					"Completed entry carries no result URL", nil)
			}
			logger.Info("result ready", logging.Int("attempt", attempt), logging.String("url", url))
			return url, nil
		}

		if attempt == e.maxAttempts {
			break
		}
		select {
		case <-time.After(e.pollInterval):
		case <-ctx.Done():
			return "", services.Wrap(services.ErrTimeout, "upscaling", "poll",
				"Polling canceled before a result appeared", ctx.Err())
		}
	}
	return "", services.Wrap(services.ErrTimeout, "upscaling", "poll",
		fmt.Sprintf("No completed result after %d attempts", e.maxAttempts), nil)
}
