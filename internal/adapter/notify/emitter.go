package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/promopay/promopay/internal/domain/model"
)

// Emitter delivers lifecycle events to the notification collaborator, which
// owns user-facing message content.
type Emitter interface {
	Emit(ctx context.Context, event model.Event) error
}

// HTTPEmitter posts events to the collaborator's HTTP endpoint.
type HTTPEmitter struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type eventPayload struct {
	Event   string   `json:"event"`
	OrderID string   `json:"order_id"`
	Notify  []string `json:"notify"`
}

// NewHTTPEmitter creates the notification client with default timeout.
func NewHTTPEmitter(baseURL string, logger *slog.Logger) (*HTTPEmitter, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse notification url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("notification url must be absolute")
	}
	return &HTTPEmitter{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Emit posts a lifecycle event.
func (e *HTTPEmitter) Emit(ctx context.Context, event model.Event) error {
	roles := make([]string, 0, len(event.Notify))
	for _, r := range event.Notify {
		roles = append(roles, string(r))
	}
	encoded, err := json.Marshal(eventPayload{Event: event.Name, OrderID: event.OrderID.String(), Notify: roles})
	if err != nil {
		return err
	}

	target := *e.baseURL
	target.Path = path.Join(target.Path, "/api/events")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		e.logger.Error("notification delivery failed",
			slog.String("event", event.Name),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("notification error: %s", resp.Status)
	}
	return nil
}

// LogEmitter writes events to the log. Used when no collaborator address is
// configured.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates a log-backed emitter.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit logs the event.
func (e *LogEmitter) Emit(_ context.Context, event model.Event) error {
	e.logger.Info("lifecycle event",
		slog.String("event", event.Name),
		slog.String("order", event.OrderID.String()),
	)
	return nil
}
