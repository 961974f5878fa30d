package upscaling

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"upscale/internal/config"
	"upscale/internal/logging"
	"upscale/internal/notifications"
	"upscale/internal/runs"
	"upscale/internal/services"
	"upscale/internal/stage"
)

// PassObserver is notified after each completed pass with the pass index and
// total pass count. Advisory only.
type PassObserver func(pass, total int)

// Upscaler drives the pass executor for every planned pass of a run.
type Upscaler struct {
	store    *runs.Store
	cfg      *config.Config
	logger   *slog.Logger
	executor *Executor
	identity IdentityProvider
	notifier notifications.Service
	observer PassObserver
}

// IdentityProvider yields the stable client identifier for an image name.
type IdentityProvider interface {
	GetOrCreate(imageName string) (string, error)
}

// NewUpscaler constructs the upscaling stage handler.
func NewUpscaler(cfg *config.Config, store *runs.Store, logger *slog.Logger, executor *Executor, provider IdentityProvider, notifier notifications.Service, observer PassObserver) *Upscaler {
	return &Upscaler{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "upscaling"),
		executor: executor,
		identity: provider,
		notifier: notifier,
		observer: observer,
	}
}

func (u *Upscaler) Prepare(ctx context.Context, item *runs.Item) error {
	logger := logging.WithContext(ctx, u.logger)
	item.InitProgress("Upscaling", "Starting upscale passes")
	logger.Info(
		"starting upscale preparation",
		logging.Int("step_count", item.StepCount),
		logging.Int("pass_index", item.PassIndex),
	)
	return nil
}

func (u *Upscaler) Execute(ctx context.Context, item *runs.Item) error {
	logger := logging.WithContext(ctx, u.logger)

	if item.StepCount == 0 {
		item.SetProgressComplete("Upscaling", "Source already at target scale")
		logger.Info("no passes required, source meets target scale")
		return nil
	}
	if strings.TrimSpace(item.WorkingFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"upscaling",
			"validate inputs",
			"No working file recorded; run planning first",
			nil,
		)
	}

	clientID, err := u.identity.GetOrCreate(item.ImageName)
	if err != nil {
		return services.Wrap(services.ErrIO, "upscaling", "client identity",
			"Could not read the client identity store", err)
	}

	for pass := item.PassIndex + 1; pass <= item.StepCount; pass++ {
		outputPath, err := u.executor.RunPass(ctx, pass, item.WorkingFile, item.ImageName, clientID)
		if err != nil {
			return err
		}

		item.PassIndex = pass
		item.WorkingFile = outputPath
		percent := float64(pass) / float64(item.StepCount) * 100
		item.SetProgress("Upscaling", fmt.Sprintf("Pass %d/%d complete", pass, item.StepCount), percent)
		if err := u.store.Update(ctx, item); err != nil {
			return services.Wrap(services.ErrIO, "upscaling", "persist progress",
				"Could not record pass completion", err)
		}
		logger.Info(
			"pass recorded",
			logging.Int(logging.FieldPass, pass),
			logging.Int(logging.FieldPassCount, item.StepCount),
		)
		if u.notifier != nil {
			if err := u.notifier.NotifyPassCompleted(ctx, item.ImageName, pass, item.StepCount); err != nil {
				logger.Warn("pass notification failed", logging.Error(err))
			}
		}
		if u.observer != nil {
			u.observer(pass, item.StepCount)
		}
	}

	item.SetProgressComplete("Upscaling", fmt.Sprintf("All %d passes complete", item.StepCount))
	return nil
}

func (u *Upscaler) HealthCheck(ctx context.Context) stage.Health {
	const name = "upscaling"
	if u.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(u.cfg.Service.BaseURL) == "" {
		return stage.Unhealthy(name, "service base URL not configured")
	}
	if u.executor == nil {
		return stage.Unhealthy(name, "pass executor unavailable")
	}
	if u.identity == nil {
		return stage.Unhealthy(name, "identity store unavailable")
	}
	return stage.Healthy(name)
}
