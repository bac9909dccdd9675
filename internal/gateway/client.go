// Package gateway holds the REST clients for the external collaborators:
// cart, catalog, coupon, order, and payment services. Each client is a thin
// typed wrapper over one shared HTTP core with OpenTelemetry instrumentation
// and a two-way error taxonomy (unreachable vs. remote rejection).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// userHeader carries the caller's identity to collaborators. Token
// verification is the auth collaborator's job, upstream of this service.
const userHeader = "X-User-ID"

// Config configures one collaborator client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// client is the shared HTTP core.
type client struct {
	http *http.Client
	base string
}

func newClient(cfg Config) client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		base: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// errBody is the error envelope collaborators use on rejection.
type errBody struct {
	Message string `json:"message"`
}

// do performs one round trip. Network failures come back as TransportError,
// non-2xx answers as RemoteError carrying the server message verbatim, and a
// 2xx body is decoded into out when out is non-nil.
func (c client) do(ctx context.Context, method, path, userID string, body, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errBody
		_ = json.Unmarshal(raw, &eb)
		return &RemoteError{Status: resp.StatusCode, Message: eb.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrapf(err, "decode %s response", path)
		}
	}
	return nil
}

func (c client) get(ctx context.Context, path, userID string, out any) error {
	return c.do(ctx, http.MethodGet, path, userID, nil, out)
}

func (c client) post(ctx context.Context, path, userID string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, userID, body, out)
}
