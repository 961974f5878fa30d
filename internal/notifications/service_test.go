package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"upscale/internal/config"
	"upscale/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunStarted(context.Background(), "cat.png"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func newConfiguredService(t *testing.T, topic string) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Runs = true
	cfg.Notifications.Passes = true
	cfg.Notifications.Errors = true
	return notifications.NewService(&cfg)
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := newConfiguredService(t, server.URL)
	ctx := context.Background()

	if err := svc.NotifyRunStarted(ctx, "cat.png"); err != nil {
		t.Fatalf("NotifyRunStarted failed: %v", err)
	}
	if err := svc.NotifyPassCompleted(ctx, "cat.png", 2, 3); err != nil {
		t.Fatalf("NotifyPassCompleted failed: %v", err)
	}
	if err := svc.NotifyRunCompleted(ctx, "cat.png", "/out/final_cat_300dpi.jpg", 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted failed: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("poll budget exhausted"), "upscaling"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(got))
	}
	if got[0].title != "Upscale - Run Started" || got[0].message != "Started upscaling: cat.png" {
		t.Fatalf("unexpected run started payload: %+v", got[0])
	}
	if got[1].message != "Pass 2/3 complete: cat.png" {
		t.Fatalf("unexpected pass payload: %+v", got[1])
	}
	if got[2].priority != "high" || got[2].tags != "upscale,run,completed" {
		t.Fatalf("unexpected completion payload: %+v", got[2])
	}
	if got[3].title != "Upscale - Error" || got[3].message != "Error with upscaling: poll budget exhausted" {
		t.Fatalf("unexpected error payload: %+v", got[3])
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Runs = false
	cfg.Notifications.Passes = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	ctx := context.Background()
	if err := svc.NotifyRunStarted(ctx, "cat.png"); err != nil {
		t.Fatalf("NotifyRunStarted failed: %v", err)
	}
	if err := svc.NotifyPassCompleted(ctx, "cat.png", 1, 1); err != nil {
		t.Fatalf("NotifyPassCompleted failed: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "test"); err != nil {
		t.Fatalf("NotifyError failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected suppressed notifications, got %d", len(got))
	}

	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("test notification should always send, got %d", len(got))
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	svc := newConfiguredService(t, server.URL)
	if err := svc.NotifyRunStarted(context.Background(), "cat.png"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
