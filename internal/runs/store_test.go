package runs_test

import (
	"context"
	"fmt"
	"testing"

	"upscale/internal/runs"
	"upscale/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewRun(ctx, "/photos/cat.png", "cat.png")
	if err != nil {
		t.Fatalf("NewRun failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected run ID to be assigned")
	}
	if item.Status != runs.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.ImageName != "cat.png" {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
}

func TestUpdatePersistsPlanFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.MustNewRun(t, store, "/photos/cat.png", "cat.png")

	item.Status = runs.StatusPlanned
	item.SourceWidth = 1000
	item.SourceHeight = 1500
	item.TargetWidth = 3189
	item.TargetHeight = 4606
	item.TargetDPI = 300
	item.PerCallScale = 4
	item.StepCount = 2
	item.WorkingFile = "/staging/upscaled_1_cat.png"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != runs.StatusPlanned {
		t.Fatalf("expected planned status, got %s", updated.Status)
	}
	if updated.SourceWidth != 1000 || updated.SourceHeight != 1500 {
		t.Fatalf("source dimensions not persisted: %dx%d", updated.SourceWidth, updated.SourceHeight)
	}
	if updated.PerCallScale != 4 || updated.StepCount != 2 {
		t.Fatalf("plan not persisted: factor=%d steps=%d", updated.PerCallScale, updated.StepCount)
	}
	if updated.WorkingFile != "/staging/upscaled_1_cat.png" {
		t.Fatalf("working file not persisted: %q", updated.WorkingFile)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatal("expected updated_at to advance past created_at")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []runs.Status{runs.StatusPending, runs.StatusUpscaling, runs.StatusCompleted, runs.StatusFailed}
	for i, status := range statuses {
		item := testsupport.MustNewRun(t, store, fmt.Sprintf("/photos/img-%d.png", i), fmt.Sprintf("img-%d.png", i))
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != len(statuses) {
		t.Fatalf("expected %d runs, got %d", len(statuses), len(all))
	}

	filtered, err := store.List(ctx, runs.StatusCompleted, runs.StatusFailed)
	if err != nil {
		t.Fatalf("filtered List failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered runs, got %d", len(filtered))
	}
	for _, item := range filtered {
		if item.Status != runs.StatusCompleted && item.Status != runs.StatusFailed {
			t.Fatalf("unexpected status in filtered list: %s", item.Status)
		}
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.MustNewRun(t, store, "/photos/a.png", "a.png")
	testsupport.MustNewRun(t, store, "/photos/b.png", "b.png")

	next, err := store.NextForStatuses(ctx, runs.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending run %d, got %#v", first.ID, next)
	}

	none, err := store.NextForStatuses(ctx, runs.StatusResizing)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no resizing runs, got %#v", none)
	}
}

func TestClearVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []runs.Status{runs.StatusCompleted, runs.StatusFailed, runs.StatusPending}
	for i, status := range statuses {
		item := testsupport.MustNewRun(t, store, fmt.Sprintf("/photos/c-%d.png", i), fmt.Sprintf("c-%d.png", i))
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	cleared, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 completed cleared, got %d", cleared)
	}

	cleared, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 failed cleared, got %d", cleared)
	}

	cleared, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 remaining cleared, got %d", cleared)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	statuses := []runs.Status{runs.StatusPending, runs.StatusUpscaling, runs.StatusUpscaling, runs.StatusCompleted}
	for i, status := range statuses {
		item := testsupport.MustNewRun(t, store, fmt.Sprintf("/photos/s-%d.png", i), fmt.Sprintf("s-%d.png", i))
		item.Status = status
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[runs.StatusUpscaling] != 2 {
		t.Fatalf("expected 2 upscaling, got %d", stats[runs.StatusUpscaling])
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 4 || health.Pending != 1 || health.Processing != 2 || health.Completed != 1 {
		t.Fatalf("unexpected health summary: %+v", health)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := runs.ParseStatus(" Upscaling "); !ok || status != runs.StatusUpscaling {
		t.Fatalf("expected upscaling, got %q ok=%v", status, ok)
	}
	if _, ok := runs.ParseStatus("shredding"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
