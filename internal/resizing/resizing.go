package resizing

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"upscale/internal/config"
	"upscale/internal/imaging"
	"upscale/internal/logging"
	"upscale/internal/runs"
	"upscale/internal/services"
	"upscale/internal/stage"
)

// Resizer produces the final artifact: the last pass's image resampled to
// the exact target dimensions, encoded as JPEG with the target DPI stamped.
type Resizer struct {
	store  *runs.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewResizer constructs the resizing stage handler.
func NewResizer(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Resizer {
	return &Resizer{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "resizing")}
}

func (r *Resizer) Prepare(ctx context.Context, item *runs.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	item.InitProgress("Resizing", "Resampling to target dimensions")
	logger.Info(
		"starting resize preparation",
		logging.String("working_file", strings.TrimSpace(item.WorkingFile)),
		logging.Int("target_width", item.TargetWidth),
		logging.Int("target_height", item.TargetHeight),
	)
	return nil
}

func (r *Resizer) Execute(ctx context.Context, item *runs.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	if strings.TrimSpace(item.WorkingFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"resizing",
			"validate inputs",
			"No working file recorded; upscaling must complete first",
			nil,
		)
	}
	if item.TargetWidth <= 0 || item.TargetHeight <= 0 {
		return services.Wrap(
			services.ErrValidation,
			"resizing",
			"validate inputs",
			"No target dimensions recorded; run planning first",
			nil,
		)
	}

	outputPath := filepath.Join(r.cfg.Paths.OutputDir, FinalFileName(item.ImageName, item.TargetDPI))
	artifact, err := imaging.ResizeToFile(
		item.WorkingFile,
		outputPath,
		item.TargetWidth,
		item.TargetHeight,
		item.TargetDPI,
		r.cfg.Output.JPEGQuality,
	)
	if err != nil {
		return services.Wrap(services.ErrIO, "resizing", "resample",
			"Could not produce the final resized image", err)
	}

	item.FinalFile = artifact.Path
	item.SetProgressComplete("Resizing", fmt.Sprintf("Final image written: %s", filepath.Base(artifact.Path)))
	logger.Info(
		"final artifact written",
		logging.String("path", artifact.Path),
		logging.Int("width", artifact.Width),
		logging.Int("height", artifact.Height),
		logging.Int("dpi", artifact.DPI),
	)
	return nil
}

func (r *Resizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "resizing"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(r.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	if r.cfg.Output.JPEGQuality <= 0 || r.cfg.Output.JPEGQuality > 100 {
		return stage.Unhealthy(name, "jpeg quality out of range")
	}
	return stage.Healthy(name)
}

// FinalFileName derives the output file name from the image name and DPI,
// e.g. "cat.png" at 300 DPI becomes "final_cat_300dpi.jpg".
func FinalFileName(imageName string, dpi int) string {
	stem := strings.TrimSuffix(imageName, filepath.Ext(imageName))
	if stem == "" {
		stem = "image"
	}
	return fmt.Sprintf("final_%s_%ddpi.jpg", stem, dpi)
}
