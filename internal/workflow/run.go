package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"upscale/internal/imaging"
	"upscale/internal/logging"
	"upscale/internal/runs"
	"upscale/internal/services"
)

// UpscaleToTarget is the single entry point exposed to callers: it creates a
// run for inputPath, drives it to completion, and returns the final artifact.
// Explicit target dimensions and DPI override the configured output section;
// zero values fall back to configuration.
func (m *Manager) UpscaleToTarget(ctx context.Context, inputPath, imageName string, targetW, targetH, targetDPI int) (imaging.Artifact, error) {
	if strings.TrimSpace(imageName) == "" {
		imageName = filepath.Base(inputPath)
	}

	item, err := m.store.NewRun(ctx, inputPath, imageName)
	if err != nil {
		return imaging.Artifact{}, fmt.Errorf("create run: %w", err)
	}
	item.TargetWidth = targetW
	item.TargetHeight = targetH
	item.TargetDPI = targetDPI
	if err := m.store.Update(ctx, item); err != nil {
		return imaging.Artifact{}, fmt.Errorf("record run targets: %w", err)
	}

	final, err := m.RunItem(ctx, item)
	if err != nil {
		return imaging.Artifact{}, err
	}
	return imaging.Artifact{
		Path:   final.FinalFile,
		Width:  final.TargetWidth,
		Height: final.TargetHeight,
		DPI:    final.TargetDPI,
	}, nil
}

// RunItem advances a run through every remaining stage until it completes or
// fails. The returned item reflects the terminal state; the error is the
// stage error that stopped the run, if any.
func (m *Manager) RunItem(ctx context.Context, item *runs.Item) (*runs.Item, error) {
	runStart := time.Now()
	ctx = services.WithRunID(ctx, item.ID)
	logger := m.runLogger(ctx, item)

	if m.notifier != nil {
		if err := m.notifier.NotifyRunStarted(ctx, item.ImageName); err != nil {
			logger.Warn("run started notification failed", logging.Error(err))
		}
	}

	for {
		stg, ok := m.stageByStart[item.Status]
		if !ok {
			break
		}
		if err := m.runStage(ctx, stg, item); err != nil {
			return item, err
		}
	}

	if item.Status != runs.StatusCompleted {
		err := fmt.Errorf("run halted in status %s", item.Status)
		logger.Error("run did not reach completion", logging.Error(err))
		return item, err
	}

	logger.Info(
		"run completed",
		logging.String("final_file", item.FinalFile),
		logging.Duration("run_duration", time.Since(runStart)),
	)
	if m.notifier != nil {
		if err := m.notifier.NotifyRunCompleted(ctx, item.ImageName, item.FinalFile, time.Since(runStart)); err != nil {
			logger.Warn("run completed notification failed", logging.Error(err))
		}
	}
	return item, nil
}

func (m *Manager) runStage(ctx context.Context, stg pipelineStage, item *runs.Item) error {
	requestID := strings.ReplaceAll(uuid.NewString(), "-", "")
	stageCtx := services.WithStage(services.WithRequestID(ctx, requestID), stg.name)
	logger := m.runLogger(stageCtx, item)

	if stg.handler == nil {
		err := fmt.Errorf("stage %s missing handler", stg.name)
		m.handleStageFailure(stageCtx, stg.name, item, err)
		return err
	}

	stageStart := time.Now()
	item.Status = stg.processingStatus
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	logger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
	)

	if err := stg.handler.Prepare(stageCtx, item); err != nil {
		m.handleStageFailure(stageCtx, stg.name, item, err)
		return err
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := stg.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) && !services.Fatal(err) {
			logger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(stageCtx, stg.name, item, err)
		return err
	}

	item.Status = stg.doneStatus
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	logger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *runs.Item, stageErr error) {
	logger := m.runLogger(ctx, item)

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed without error detail", stageName)
	}
	item.SetFailed(message)

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", services.Kind(stageErr)),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutdown during failure persistence")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	if m.notifier != nil {
		if err := m.notifier.NotifyError(ctx, stageErr, stageName); err != nil {
			logger.Warn("error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) runLogger(ctx context.Context, item *runs.Item) *slog.Logger {
	base := logging.NewComponentLogger(m.logger, "workflow")
	return logging.WithContext(ctx, base).With(
		logging.String("image_name", strings.TrimSpace(item.ImageName)),
	)
}
