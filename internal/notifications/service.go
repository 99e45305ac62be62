package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"itti/internal/config"
	"itti/internal/identity"
)

const userAgent = "Itti-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyNewCustomers(ctx context.Context, mappings map[identity.Identity]string) error
	NotifyAttachmentsStored(ctx context.Context, count int) error
	NotifyPassFailed(ctx context.Context, passErr error) error
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

func (n *ntfyService) NotifyNewCustomers(ctx context.Context, mappings map[identity.Identity]string) error {
	if len(mappings) == 0 {
		return nil
	}
	data := payload{
		title:   "Itti - New Customers",
		message: fmt.Sprintf("📁 %d new customer folder(s): %s", len(mappings), formatCustomerList(mappings)),
		tags:    []string{"itti", "customers", "new"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAttachmentsStored(ctx context.Context, count int) error {
	if count == 0 {
		return nil
	}
	data := payload{
		title:   "Itti - Attachments Stored",
		message: fmt.Sprintf("📎 Stored %d spreadsheet attachment(s)", count),
		tags:    []string{"itti", "attachments", "stored"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPassFailed(ctx context.Context, passErr error) error {
	message := "unknown"
	if passErr != nil {
		message = strings.TrimSpace(passErr.Error())
	}
	data := payload{
		title:    "Itti - Pass Failed",
		message:  fmt.Sprintf("❌ Ingestion pass failed: %s", message),
		tags:     []string{"itti", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Itti - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"itti", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func formatCustomerList(mappings map[identity.Identity]string) string {
	names := make([]string, 0, len(mappings))
	for id := range mappings {
		names = append(names, string(id))
	}
	sort.Strings(names)
	if len(names) > 5 {
		return fmt.Sprintf("%s and %d more", strings.Join(names[:5], ", "), len(names)-5)
	}
	return strings.Join(names, ", ")
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

func (noopService) NotifyNewCustomers(context.Context, map[identity.Identity]string) error {
	return nil
}
func (noopService) NotifyAttachmentsStored(context.Context, int) error { return nil }
func (noopService) NotifyPassFailed(context.Context, error) error      { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
