package planning

import (
	"context"
	"strings"

	"log/slog"

	"upscale/internal/config"
	"upscale/internal/identity"
	"upscale/internal/imaging"
	"upscale/internal/logging"
	"upscale/internal/planner"
	"upscale/internal/runs"
	"upscale/internal/services"
	"upscale/internal/stage"
)

// IdentityProvider yields the stable client identifier for an image name.
type IdentityProvider interface {
	GetOrCreate(imageName string) (string, error)
}

// PlanObserver receives the computed plan before any pass runs. Advisory
// only; errors are not possible and the observer must not block.
type PlanObserver func(plan planner.Plan)

// Planner assigns the client identity, probes the source image, and computes
// the upscale plan for a run.
type Planner struct {
	store    *runs.Store
	cfg      *config.Config
	logger   *slog.Logger
	identity IdentityProvider
	observer PlanObserver
}

// NewPlanner constructs the planning stage handler using default dependencies.
func NewPlanner(cfg *config.Config, store *runs.Store, logger *slog.Logger) *Planner {
	manager := identity.NewManager(identity.NewFileStore(cfg.Paths.IdentityPath))
	return NewPlannerWithDependencies(cfg, store, logger, manager, nil)
}

// NewPlannerWithDependencies allows injecting collaborators (used in tests).
func NewPlannerWithDependencies(cfg *config.Config, store *runs.Store, logger *slog.Logger, provider IdentityProvider, observer PlanObserver) *Planner {
	return &Planner{store: store, cfg: cfg, logger: logging.NewComponentLogger(logger, "planning"), identity: provider, observer: observer}
}

func (p *Planner) Prepare(ctx context.Context, item *runs.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	item.InitProgress("Planning", "Assigning client identity")
	logger.Info(
		"starting plan preparation",
		logging.String("image_name", strings.TrimSpace(item.ImageName)),
		logging.String("source_path", strings.TrimSpace(item.SourcePath)),
	)
	return nil
}

func (p *Planner) Execute(ctx context.Context, item *runs.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	if strings.TrimSpace(item.SourcePath) == "" {
		return services.Wrap(
			services.ErrValidation,
			"planning",
			"validate inputs",
			"No source image recorded for this run",
			nil,
		)
	}

	clientID, err := p.identity.GetOrCreate(item.ImageName)
	if err != nil {
		return services.Wrap(services.ErrIO, "planning", "client identity",
			"Could not read or persist the client identity store", err)
	}
	logger.Info("client identity assigned", logging.String("client_id", clientID))

	info, err := imaging.Probe(item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrIO, "planning", "probe source",
			"Could not read source image dimensions", err)
	}

	// Explicit targets on the run win; otherwise the configured output
	// dimensions apply.
	targetW, targetH := item.TargetWidth, item.TargetHeight
	if targetW <= 0 || targetH <= 0 {
		targetW, targetH = p.cfg.TargetPixels()
	}
	targetDPI := item.TargetDPI
	if targetDPI <= 0 {
		targetDPI = p.cfg.Output.DPI
	}
	plan, err := planner.Compute(info.Width, info.Height, targetW, targetH, float64(p.cfg.Service.Scale))
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "compute plan",
			"Upscale plan could not be computed from the configured target", err)
	}

	item.SourceWidth = plan.SourceWidth
	item.SourceHeight = plan.SourceHeight
	item.TargetWidth = plan.TargetWidth
	item.TargetHeight = plan.TargetHeight
	item.TargetDPI = targetDPI
	item.PerCallScale = p.cfg.Service.Scale
	item.StepCount = plan.StepCount
	item.PassIndex = 0
	item.WorkingFile = item.SourcePath
	item.SetProgressComplete("Planning", "Plan computed")

	logger.Info(
		"plan computed",
		logging.Int("source_width", plan.SourceWidth),
		logging.Int("source_height", plan.SourceHeight),
		logging.Int("target_width", plan.TargetWidth),
		logging.Int("target_height", plan.TargetHeight),
		logging.Float64("scale_factor", plan.ScaleFactor),
		logging.Int("step_count", plan.StepCount),
	)

	if p.observer != nil {
		p.observer(plan)
	}
	return nil
}

func (p *Planner) HealthCheck(ctx context.Context) stage.Health {
	const name = "planning"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if p.identity == nil {
		return stage.Unhealthy(name, "identity store unavailable")
	}
	if w, h := p.cfg.TargetPixels(); w <= 0 || h <= 0 {
		return stage.Unhealthy(name, "target dimensions not configured")
	}
	return stage.Healthy(name)
}
