package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPGateway talks to the payment provider's REST API. Configured from env:
//
//	PAYMENT_GATEWAY_URL     base URL of the provider API
//	PAYMENT_GATEWAY_API_KEY bearer token
//	PAYMENT_GATEWAY_TIMEOUT request timeout, Go duration (default 15s)
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

func NewHTTPGateway(log *logrus.Logger) *HTTPGateway {
	timeout := 15 * time.Second
	if v := os.Getenv("PAYMENT_GATEWAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}
	return &HTTPGateway{
		baseURL: envOrDefault("PAYMENT_GATEWAY_URL", "http://localhost:9190"),
		apiKey:  os.Getenv("PAYMENT_GATEWAY_API_KEY"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

type chargeRequest struct {
	Amount   int64             `json:"amount"`
	PayerRef string            `json:"payer_ref"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type transferRequest struct {
	Amount     int64  `json:"amount"`
	AccountRef string `json:"account_ref"`
}

type refundRequest struct {
	ChargeID string `json:"charge_id"`
	Amount   int64  `json:"amount"`
}

type gatewayResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

func (g *HTTPGateway) AuthorizeCharge(ctx context.Context, amount int64, payerRef string, metadata map[string]string) (string, error) {
	return g.post(ctx, "/v1/charges", chargeRequest{Amount: amount, PayerRef: payerRef, Metadata: metadata}, "")
}

func (g *HTTPGateway) Transfer(ctx context.Context, amount int64, payeeAccountRef, idempotencyKey string) (string, error) {
	return g.post(ctx, "/v1/transfers", transferRequest{Amount: amount, AccountRef: payeeAccountRef}, idempotencyKey)
}

func (g *HTTPGateway) Refund(ctx context.Context, chargeID string, amount int64) (string, error) {
	return g.post(ctx, "/v1/refunds", refundRequest{ChargeID: chargeID, Amount: amount}, "")
}

func (g *HTTPGateway) post(ctx context.Context, path string, body any, idempotencyKey string) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		// Includes timeouts: the outcome is unknown, not a failure.
		g.log.WithFields(logrus.Fields{"path": path, "err": err}).Warn("gateway request failed")
		return "", ErrUnavailable
	}
	defer resp.Body.Close()

	var out gatewayResponse
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode gateway response: %w", err)
		}
		return out.ID, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		_ = json.NewDecoder(resp.Body).Decode(&out)
		g.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode, "message": out.Message}).
			Info("gateway rejected operation")
		return "", ErrRejected
	default:
		g.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Warn("gateway server error")
		return "", ErrUnavailable
	}
}
