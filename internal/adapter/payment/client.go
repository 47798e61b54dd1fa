package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/shopspring/decimal"
)

// ErrAlreadyCaptured signals a second capture attempt on the same
// authorization; the provider guarantees at-most-once capture.
var ErrAlreadyCaptured = errors.New("authorization already captured")

// ErrAuthorizationExpired signals the funds hold lapsed at the provider before
// a terminal transition was forced; the order requires manual reconciliation.
var ErrAuthorizationExpired = errors.New("authorization expired")

// Gateway exposes escrow operations against the payment provider.
type Gateway interface {
	// Authorize opens a funds hold for the full order amount without
	// capturing it and returns the provider authorization reference.
	Authorize(ctx context.Context, amount decimal.Decimal, payer string, metadata map[string]string) (string, error)
	// Capture converts the hold into a charge. Safe to call at most once.
	Capture(ctx context.Context, authorizationID string) error
	// Release frees the hold in full. Releasing twice is a no-op success.
	Release(ctx context.Context, authorizationID string) error
	// Transfer moves captured funds to the payee's payout destination.
	Transfer(ctx context.Context, destination string, amount decimal.Decimal, sourceAuthorization string) (string, error)
}

// HTTPGateway implements Gateway via the provider's HTTP API.
type HTTPGateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type authorizeRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Payer    string            `json:"payer"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type authorizeResponse struct {
	AuthorizationID string `json:"authorization_id"`
}

type transferRequest struct {
	Destination         string          `json:"destination"`
	Amount              decimal.Decimal `json:"amount"`
	SourceAuthorization string          `json:"source_authorization"`
}

type transferResponse struct {
	TransferID string `json:"transfer_id"`
}

// NewHTTPGateway creates the provider client with default timeout.
func NewHTTPGateway(baseURL string, logger *slog.Logger) (*HTTPGateway, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment provider url must be absolute")
	}
	return &HTTPGateway{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// Authorize opens a funds hold against the payer.
func (g *HTTPGateway) Authorize(ctx context.Context, amount decimal.Decimal, payer string, metadata map[string]string) (string, error) {
	var data authorizeResponse
	err := g.post(ctx, "/api/authorizations", authorizeRequest{Amount: amount, Payer: payer, Metadata: metadata}, &data)
	if err != nil {
		return "", err
	}
	if data.AuthorizationID == "" {
		return "", fmt.Errorf("provider returned empty authorization id")
	}
	return data.AuthorizationID, nil
}

// Capture charges the held funds.
func (g *HTTPGateway) Capture(ctx context.Context, authorizationID string) error {
	return g.post(ctx, path.Join("/api/authorizations", authorizationID, "capture"), nil, nil)
}

// Release frees the held funds.
func (g *HTTPGateway) Release(ctx context.Context, authorizationID string) error {
	return g.post(ctx, path.Join("/api/authorizations", authorizationID, "release"), nil, nil)
}

// Transfer pays out captured funds to the destination account.
func (g *HTTPGateway) Transfer(ctx context.Context, destination string, amount decimal.Decimal, sourceAuthorization string) (string, error) {
	var data transferResponse
	req := transferRequest{Destination: destination, Amount: amount, SourceAuthorization: sourceAuthorization}
	if err := g.post(ctx, "/api/transfers", req, &data); err != nil {
		return "", err
	}
	return data.TransferID, nil
}

func (g *HTTPGateway) post(ctx context.Context, endpoint string, payload, out any) error {
	target := *g.baseURL
	target.Path = path.Join(target.Path, endpoint)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if out == nil {
			return nil
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	case http.StatusConflict:
		return ErrAlreadyCaptured
	case http.StatusGone:
		return ErrAuthorizationExpired
	default:
		raw, _ := io.ReadAll(resp.Body)
		g.logger.Error("payment provider request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return fmt.Errorf("payment provider error: %s", resp.Status)
	}
}
