package healthchecks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shyim/db-auto-backup/internal/notification"
)

// DefaultHost is the public healthchecks.io ping host
const DefaultHost = "hc-ping.com"

func init() {
	notification.Register(&HealthchecksType{})
}

// HealthchecksType implements NotifierType for healthchecks.io style ping endpoints
type HealthchecksType struct{}

// Name returns the notifier type identifier
func (t *HealthchecksType) Name() string {
	return "healthchecks"
}

// Create instantiates a healthchecks notifier from options
func (t *HealthchecksType) Create(name string, options map[string]string) (notification.Notifier, error) {
	id, ok := options["id"]
	if !ok || id == "" {
		return nil, fmt.Errorf("healthchecks notifier %q requires 'id' option", name)
	}

	host := options["host"]
	if host == "" {
		host = DefaultHost
	}

	return &HealthchecksNotifier{
		name:    name,
		baseURL: baseURL(host, id),
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// baseURL builds https://{host}/{id}. A host that already carries a scheme
// is used as is, which allows plain http for self-hosted instances.
func baseURL(host, id string) string {
	host = strings.TrimSuffix(host, "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + "/" + id
}

// HealthchecksNotifier pings the check when a run starts and finishes
type HealthchecksNotifier struct {
	name    string
	baseURL string
	client  *http.Client
}

// Name returns the notifier instance name
func (h *HealthchecksNotifier) Name() string {
	return h.name
}

// Type returns the notifier type
func (h *HealthchecksNotifier) Type() string {
	return "healthchecks"
}

// Send pings {base}/start for a started run and {base} with the report as
// body for a finished one.
func (h *HealthchecksNotifier) Send(ctx context.Context, event notification.Event) error {
	switch event.Type {
	case notification.EventRunStarted:
		return h.ping(ctx, h.baseURL+"/start", "")
	case notification.EventRunFinished:
		return h.ping(ctx, h.baseURL, event.Report)
	default:
		return nil
	}
}

func (h *HealthchecksNotifier) ping(ctx context.Context, url, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("healthchecks ping %s returned status %d", req.URL.Path, resp.StatusCode)
	}

	return nil
}
