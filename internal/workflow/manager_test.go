package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"upscale/internal/config"
	"upscale/internal/imaging"
	"upscale/internal/logging"
	"upscale/internal/notifications"
	"upscale/internal/planner"
	"upscale/internal/planning"
	"upscale/internal/resizing"
	"upscale/internal/runs"
	"upscale/internal/services"
	"upscale/internal/services/upscaler"
	"upscale/internal/stage"
	"upscale/internal/testsupport"
	"upscale/internal/upscaling"
	"upscale/internal/workflow"
)

const testClientID = "0123456789abcdef0123456789abcdef"

type fixedIdentity struct{}

func (fixedIdentity) GetOrCreate(string) (string, error) { return testClientID, nil }

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type serviceStub struct {
	submits   int
	downloads int
	completed bool
	payload   []byte
}

func (s *serviceStub) Submit(ctx context.Context, localPath, clientID string, scale int, faceEnhance bool) error {
	s.submits++
	return nil
}

func (s *serviceStub) List(ctx context.Context, clientID string) (upscaler.Listing, error) {
	if s.completed {
		return upscaler.Listing{Completed: []upscaler.JobEntry{{URL: "https://cdn.example/result"}}}, nil
	}
	return upscaler.Listing{}, nil
}

func (s *serviceStub) Download(ctx context.Context, resultURL string) ([]byte, error) {
	s.downloads++
	return s.payload, nil
}

type recordingNotifier struct {
	started   int
	passes    int
	completed int
	errs      []error
}

func (r *recordingNotifier) NotifyRunStarted(context.Context, string) error {
	r.started++
	return nil
}

func (r *recordingNotifier) NotifyPassCompleted(context.Context, string, int, int) error {
	r.passes++
	return nil
}

func (r *recordingNotifier) NotifyRunCompleted(context.Context, string, string, time.Duration) error {
	r.completed++
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, err error, _ string) error {
	r.errs = append(r.errs, err)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func newTestManager(t *testing.T, cfg *config.Config, store *runs.Store, client upscaler.Client, notifier notifications.Service, opts ...workflow.ManagerOption) *workflow.Manager {
	t.Helper()
	logger := logging.NewNop()
	ident := fixedIdentity{}
	executor := upscaling.NewExecutor(cfg, logger,
		upscaling.WithClient(client),
		upscaling.WithPollInterval(time.Millisecond),
	)
	stages := workflow.StageSet{
		Planner:  planning.NewPlannerWithDependencies(cfg, store, logger, ident, nil),
		Upscaler: upscaling.NewUpscaler(cfg, store, logger, executor, ident, notifier, nil),
		Resizer:  resizing.NewResizer(cfg, store, logger),
	}
	return workflow.NewManagerWithStages(cfg, store, logger, notifier, stages, opts...)
}

func TestUpscaleToTargetSinglePass(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTarget(380, 380), testsupport.WithMaxAttempts(5))
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(testsupport.BaseDir(cfg), "cat.png")
	testsupport.WritePNG(t, source, 100, 100)

	stub := &serviceStub{completed: true, payload: pngBytes(t, 400, 400)}
	notifier := &recordingNotifier{}
	manager := newTestManager(t, cfg, store, stub, notifier)

	artifact, err := manager.UpscaleToTarget(context.Background(), source, "cat.png", 0, 0, 0)
	if err != nil {
		t.Fatalf("UpscaleToTarget failed: %v", err)
	}

	if stub.submits != 1 || stub.downloads != 1 {
		t.Fatalf("expected one pass, got submits=%d downloads=%d", stub.submits, stub.downloads)
	}
	if artifact.Width != 380 || artifact.Height != 380 || artifact.DPI != 300 {
		t.Fatalf("unexpected artifact geometry: %+v", artifact)
	}
	info, err := imaging.Probe(artifact.Path)
	if err != nil {
		t.Fatalf("probe artifact: %v", err)
	}
	if info.Width != 380 || info.Height != 380 || info.Format != "jpeg" {
		t.Fatalf("unexpected artifact on disk: %+v", info)
	}

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].Status != runs.StatusCompleted {
		t.Fatalf("run not completed: %+v", items)
	}
	if notifier.started != 1 || notifier.passes != 1 || notifier.completed != 1 || len(notifier.errs) != 0 {
		t.Fatalf("unexpected notifications: %+v", notifier)
	}
}

func TestUpscaleToTargetZeroStepsSkipsService(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTarget(50, 50))
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(testsupport.BaseDir(cfg), "big.png")
	testsupport.WritePNG(t, source, 200, 200)

	stub := &serviceStub{}
	manager := newTestManager(t, cfg, store, stub, &recordingNotifier{})

	artifact, err := manager.UpscaleToTarget(context.Background(), source, "big.png", 0, 0, 0)
	if err != nil {
		t.Fatalf("UpscaleToTarget failed: %v", err)
	}
	if stub.submits != 0 {
		t.Fatalf("service should not be contacted, got %d submits", stub.submits)
	}
	info, err := imaging.Probe(artifact.Path)
	if err != nil {
		t.Fatalf("probe artifact: %v", err)
	}
	if info.Width != 50 || info.Height != 50 {
		t.Fatalf("unexpected artifact dims: %dx%d", info.Width, info.Height)
	}
}

func TestUpscaleToTargetTimeoutFailsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTarget(380, 380), testsupport.WithMaxAttempts(3))
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(testsupport.BaseDir(cfg), "cat.png")
	testsupport.WritePNG(t, source, 100, 100)

	stub := &serviceStub{completed: false}
	notifier := &recordingNotifier{}
	manager := newTestManager(t, cfg, store, stub, notifier)

	_, err := manager.UpscaleToTarget(context.Background(), source, "cat.png", 0, 0, 0)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if stub.downloads != 0 {
		t.Fatal("no download expected on timeout")
	}

	items, listErr := store.List(context.Background())
	if listErr != nil {
		t.Fatalf("List failed: %v", listErr)
	}
	if len(items) != 1 || items[0].Status != runs.StatusFailed {
		t.Fatalf("run should be failed: %+v", items)
	}
	if items[0].FinalFile != "" {
		t.Fatalf("failed run must not record a final file: %q", items[0].FinalFile)
	}
	if len(notifier.errs) != 1 || !errors.Is(notifier.errs[0], services.ErrTimeout) {
		t.Fatalf("expected one timeout error notification: %+v", notifier.errs)
	}
	if notifier.completed != 0 {
		t.Fatal("failed run must not notify completion")
	}

	// No partial artifact in the output directory either.
	entries, readErr := os.ReadDir(cfg.Paths.OutputDir)
	if readErr == nil && len(entries) != 0 {
		t.Fatalf("output directory should be empty, found %d entries", len(entries))
	}
}

func TestUpscaleToTargetExplicitTargetsOverrideConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTarget(9999, 9999))
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(testsupport.BaseDir(cfg), "cat.png")
	testsupport.WritePNG(t, source, 100, 100)

	manager := newTestManager(t, cfg, store, &serviceStub{}, &recordingNotifier{})
	artifact, err := manager.UpscaleToTarget(context.Background(), source, "cat.png", 80, 60, 72)
	if err != nil {
		t.Fatalf("UpscaleToTarget failed: %v", err)
	}
	if artifact.Width != 80 || artifact.Height != 60 || artifact.DPI != 72 {
		t.Fatalf("explicit targets not honored: %+v", artifact)
	}
}

func TestHooksObservePlanAndPasses(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTarget(380, 380), testsupport.WithMaxAttempts(5))
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(testsupport.BaseDir(cfg), "cat.png")
	testsupport.WritePNG(t, source, 100, 100)

	var plans []planner.Plan
	var passEvents [][2]int

	logger := logging.NewNop()
	ident := fixedIdentity{}
	stub := &serviceStub{completed: true, payload: pngBytes(t, 400, 400)}
	executor := upscaling.NewExecutor(cfg, logger,
		upscaling.WithClient(stub),
		upscaling.WithPollInterval(time.Millisecond),
	)

	manager := workflow.NewManagerWithStages(cfg, store, logger, &recordingNotifier{}, workflow.StageSet{
		Planner: planning.NewPlannerWithDependencies(cfg, store, logger, ident, func(plan planner.Plan) {
			plans = append(plans, plan)
		}),
		Upscaler: upscaling.NewUpscaler(cfg, store, logger, executor, ident, nil, func(pass, total int) {
			passEvents = append(passEvents, [2]int{pass, total})
		}),
		Resizer: resizing.NewResizer(cfg, store, logger),
	})

	if _, err := manager.UpscaleToTarget(context.Background(), source, "cat.png", 0, 0, 0); err != nil {
		t.Fatalf("UpscaleToTarget failed: %v", err)
	}
	if len(plans) != 1 || plans[0].StepCount != 1 {
		t.Fatalf("plan hook not observed: %+v", plans)
	}
	if len(passEvents) != 1 || passEvents[0] != [2]int{1, 1} {
		t.Fatalf("pass hook not observed: %+v", passEvents)
	}
}

type cancelingStage struct {
	cancel context.CancelFunc
}

func (cancelingStage) Prepare(context.Context, *runs.Item) error { return nil }

func (s cancelingStage) Execute(context.Context, *runs.Item) error {
	s.cancel()
	return context.Canceled
}

func (cancelingStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("canceling")
}

func TestShutdownCancellationDoesNotFailRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustNewRun(t, store, filepath.Join(testsupport.BaseDir(cfg), "cat.png"), "cat.png")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithStages(cfg, store, logging.NewNop(), notifier, workflow.StageSet{
		Planner: cancelingStage{cancel: cancel},
	})

	_, err := manager.RunItem(ctx, item)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to surface, got %v", err)
	}

	stored, getErr := store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID failed: %v", getErr)
	}
	if stored.Status == runs.StatusFailed {
		t.Fatalf("shutdown must not mark the run failed: %+v", stored)
	}
	if len(notifier.errs) != 0 {
		t.Fatalf("shutdown must not notify an error: %+v", notifier.errs)
	}
}

func TestHealthAggregatesStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := newTestManager(t, cfg, store, &serviceStub{}, &recordingNotifier{})
	checks := manager.Health(context.Background())
	if len(checks) != 3 {
		t.Fatalf("expected 3 stage checks, got %d", len(checks))
	}
	if !manager.Ready(context.Background()) {
		t.Fatalf("expected manager ready: %+v", checks)
	}
}
