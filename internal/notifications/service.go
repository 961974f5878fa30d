package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"upscale/internal/config"
)

const userAgent = "Upscale-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRunStarted(ctx context.Context, imageName string) error
	NotifyPassCompleted(ctx context.Context, imageName string, pass, total int) error
	NotifyRunCompleted(ctx context.Context, imageName, finalFile string, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		sendRuns:   cfg.Notifications.Runs,
		sendPasses: cfg.Notifications.Passes,
		sendErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	sendRuns   bool
	sendPasses bool
	sendErrors bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, imageName string) error {
	if !n.sendRuns {
		return nil
	}
	imageName = strings.TrimSpace(imageName)
	data := payload{
		title:   "Upscale - Run Started",
		message: fmt.Sprintf("Started upscaling: %s", imageName),
		tags:    []string{"upscale", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPassCompleted(ctx context.Context, imageName string, pass, total int) error {
	if !n.sendPasses {
		return nil
	}
	imageName = strings.TrimSpace(imageName)
	data := payload{
		title:   "Upscale - Pass Complete",
		message: fmt.Sprintf("Pass %d/%d complete: %s", pass, total, imageName),
		tags:    []string{"upscale", "pass", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, imageName, finalFile string, duration time.Duration) error {
	if !n.sendRuns {
		return nil
	}
	imageName = strings.TrimSpace(imageName)
	finalFile = strings.TrimSpace(finalFile)
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	message := fmt.Sprintf("Upscale complete: %s in %s", imageName, duration)
	if finalFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalFile)
	}
	data := payload{
		title:    "Upscale - Complete",
		message:  message,
		tags:     []string{"upscale", "run", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Upscale - Error",
		message:  builder.String(),
		tags:     []string{"upscale", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Upscale - Test",
		message:  "Notification system test",
		tags:     []string{"upscale", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string) error                     { return nil }
func (noopService) NotifyPassCompleted(context.Context, string, int, int) error        { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
