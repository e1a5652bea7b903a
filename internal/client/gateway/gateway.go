// Package gateway is the single chokepoint for calls to the ledger service.
//
// Outbound, it attaches the bearer credential of the current session and,
// for mutations, the caller-supplied idempotency key. Inbound, it classifies
// every failure into exactly one of the typed errors in this package: no
// component above it ever interprets a raw HTTP status code, and no error is
// silently swallowed. The gateway itself never retries and never redirects;
// retry policy belongs to callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okazarin/teller/internal/client/session"
	"github.com/okazarin/teller/internal/logging"
)

const idempotencyKeyHeader = "Idempotency-Key"

type Gateway struct {
	baseURL string
	client  *http.Client
	store   session.Store
	log     logging.Logger
}

func New(baseURL string, timeout time.Duration, store session.Store, log logging.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		store:   store,
		log:     log,
	}
}

// CallOptions collects per-call adjustments.
type CallOptions struct {
	IdempotencyKey string
}

// CallOption adjusts a single outbound call.
type CallOption func(*CallOptions)

// WithIdempotencyKey attaches key as the Idempotency-Key header. The caller
// generates the key once per user intent, before the first network attempt,
// and reuses it across automatic resends of that same intent.
func WithIdempotencyKey(key string) CallOption {
	return func(o *CallOptions) { o.IdempotencyKey = key }
}

// PostJSON sends body as JSON and, on 2xx, decodes the response into out
// (skipped when out is nil).
func (g *Gateway) PostJSON(ctx context.Context, path string, body any, out any, opts ...CallOption) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return g.do(ctx, http.MethodPost, path, payload, out, opts...)
}

// GetJSON fetches path and decodes the response into out (skipped when out
// is nil).
func (g *Gateway) GetJSON(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

func (g *Gateway) do(ctx context.Context, method, path string, payload []byte, out any, opts ...CallOption) error {
	var options CallOptions
	for _, opt := range opts {
		opt(&options)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if options.IdempotencyKey != "" {
		req.Header.Set(idempotencyKeyHeader, options.IdempotencyKey)
	}

	sess, err := g.store.Load(ctx)
	if err != nil {
		return err
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Credential)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn(ctx, "no response from server", "method", method, "path", path, "error", err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The credential is dead either way; clear it before anything else
		// gets a chance to reuse it.
		if err := g.store.Clear(ctx); err != nil {
			g.log.Error(ctx, "clearing rejected session", "error", err)
		}
		g.log.Info(ctx, "session rejected by server", "status", resp.StatusCode, "path", path)
		return ErrSessionExpired

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := serverMessage(resp.Body)
		g.log.Warn(ctx, "request failed", "status", resp.StatusCode, "path", path, "message", msg)
		return &RequestFailed{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// serverMessage extracts the human-readable reason from an error body.
func serverMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}
