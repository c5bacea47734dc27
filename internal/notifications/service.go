package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caltechlibrary/distillery-sub000/internal/config"
)

const userAgent = "Distillery-Go/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, collection string, folderCount int) error
	NotifyRunCompleted(ctx context.Context, collection string, processed, skipped int, duration time.Duration) error
	NotifyRunAborted(ctx context.Context, collection, reason string) error
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

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, collection string, folderCount int) error {
	collection = strings.TrimSpace(collection)
	data := payload{
		title:   "Distillery - Ingest Started",
		message: fmt.Sprintf("Started ingest of %s: %d folders", collection, folderCount),
		tags:    []string{"distillery", "ingest", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, collection string, processed, skipped int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if skipped == 0 {
		title = "Distillery - Ingest Complete"
		message = fmt.Sprintf("Ingest of %s complete: %d files in %s", collection, processed, durationText)
	} else {
		title = "Distillery - Ingest Complete (with skips)"
		message = fmt.Sprintf("Ingest of %s complete: %d succeeded, %d skipped in %s", collection, processed, skipped, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"distillery", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunAborted(ctx context.Context, collection, reason string) error {
	collection = strings.TrimSpace(collection)
	reason = strings.TrimSpace(reason)
	data := payload{
		title:    "Distillery - Ingest Aborted",
		message:  fmt.Sprintf("Ingest of %s aborted: %s", collection, reason),
		tags:     []string{"distillery", "ingest", "aborted"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
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
		title:    "Distillery - Error",
		message:  builder.String(),
		tags:     []string{"distillery", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Distillery - Test",
		message:  "Notification system test",
		tags:     []string{"distillery", "test"},
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

// NewNoop returns a Service that discards every notification.
func NewNoop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyRunAborted(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
