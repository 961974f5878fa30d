package workflow

import (
	"log/slog"

	"upscale/internal/config"
	"upscale/internal/identity"
	"upscale/internal/notifications"
	"upscale/internal/planner"
	"upscale/internal/planning"
	"upscale/internal/resizing"
	"upscale/internal/runs"
	"upscale/internal/stage"
	"upscale/internal/upscaling"
)

// PlanHook is invoked once per run after the plan is computed. Advisory only.
type PlanHook func(plan planner.Plan)

// PassHook is invoked after each completed upscale pass. Advisory only.
type PassHook func(pass, total int)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Planner  stage.Handler
	Upscaler stage.Handler
	Resizer  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      runs.Status
	processingStatus runs.Status
	doneStatus       runs.Status
}

// Manager drives a run through planning, upscaling, and resizing in order.
type Manager struct {
	cfg      *config.Config
	store    *runs.Store
	logger   *slog.Logger
	notifier notifications.Service

	stages       []pipelineStage
	stageByStart map[runs.Status]pipelineStage

	planHook PlanHook
	passHook PassHook
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPlanHook registers an advisory callback fired when a plan is computed.
func WithPlanHook(hook PlanHook) ManagerOption {
	return func(m *Manager) {
		m.planHook = hook
	}
}

// WithPassHook registers an advisory callback fired after each pass.
func WithPassHook(hook PassHook) ManagerOption {
	return func(m *Manager) {
		m.passHook = hook
	}
}

// NewManager constructs a workflow manager with default stage handlers.
func NewManager(cfg *config.Config, store *runs.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := newManager(cfg, store, logger, notifications.NewService(cfg), opts...)

	ident := identity.NewManager(identity.NewFileStore(cfg.Paths.IdentityPath))
	executor := upscaling.NewExecutor(cfg, logger)
	m.configureStages(StageSet{
		Planner:  planning.NewPlannerWithDependencies(cfg, store, logger, ident, m.observePlan),
		Upscaler: upscaling.NewUpscaler(cfg, store, logger, executor, ident, m.notifier, m.observePass),
		Resizer:  resizing.NewResizer(cfg, store, logger),
	})
	return m
}

// NewManagerWithStages constructs a workflow manager around injected stage
// handlers and notifier (used in tests).
func NewManagerWithStages(cfg *config.Config, store *runs.Store, logger *slog.Logger, notifier notifications.Service, stages StageSet, opts ...ManagerOption) *Manager {
	m := newManager(cfg, store, logger, notifier, opts...)
	m.configureStages(stages)
	return m
}

func newManager(cfg *config.Config, store *runs.Store, logger *slog.Logger, notifier notifications.Service, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) configureStages(set StageSet) {
	m.stages = []pipelineStage{
		{
			name:             "planning",
			handler:          set.Planner,
			startStatus:      runs.StatusPending,
			processingStatus: runs.StatusPlanning,
			doneStatus:       runs.StatusPlanned,
		},
		{
			name:             "upscaling",
			handler:          set.Upscaler,
			startStatus:      runs.StatusPlanned,
			processingStatus: runs.StatusUpscaling,
			doneStatus:       runs.StatusUpscaled,
		},
		{
			name:             "resizing",
			handler:          set.Resizer,
			startStatus:      runs.StatusUpscaled,
			processingStatus: runs.StatusResizing,
			doneStatus:       runs.StatusCompleted,
		},
	}
	m.stageByStart = make(map[runs.Status]pipelineStage, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
	}
}

func (m *Manager) observePlan(plan planner.Plan) {
	if m.planHook != nil {
		m.planHook(plan)
	}
}

func (m *Manager) observePass(pass, total int) {
	if m.passHook != nil {
		m.passHook(pass, total)
	}
}
