// Package sentinel is the HTTP client for the remote analysis service.
// It attaches the shared-secret credential header, serialises request
// bodies, and classifies every outcome as success, *RemoteError (the
// service answered with a non-2xx status), or ErrRemoteUnavailable (the
// service could not be reached). No retry, no backoff: the gateway's
// handlers treat any failure identically and fall back to local state.
package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/piyawatSritavong/cybersentinel/internal/telemetry"
)

// HeaderAPIKey is the credential header the analysis service expects.
const HeaderAPIKey = "X-API-KEY"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 256 * 1024
)

// Client performs outbound calls to the analysis service.
type Client struct {
	baseURL    string
	creds      *Credentials
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for the analysis service at baseURL.
func NewClient(baseURL string, creds *Credentials, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: log,
	}
}

// Get issues a GET to the analysis service.
func (c *Client) Get(ctx context.Context, path string) (any, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Do issues one call and classifies the outcome. On success the decoded
// JSON body is returned (nil for an empty body). Non-2xx responses become
// a *RemoteError carrying the status and a short body excerpt; transport
// failures wrap ErrRemoteUnavailable.
func (c *Client) Do(ctx context.Context, method, path string, body any) (any, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "sentinel.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("sentinel.method", method),
		attribute.String("sentinel.path", path),
	)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderAPIKey, c.creds.Get())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "unreachable")
		c.log.Debug("analysis service unreachable", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	span.SetAttributes(attribute.Int("sentinel.status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remoteErr := &RemoteError{
			Status:  resp.StatusCode,
			Excerpt: truncate(strings.TrimSpace(string(respBody)), maxExcerptLen),
		}
		span.SetStatus(codes.Error, remoteErr.Error())
		c.log.Debug("analysis service error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, remoteErr
	}

	if len(respBody) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(respBody, &out); err != nil {
		// A 2xx body the gateway cannot parse is as useless as an error
		// response; classify it the same way so callers fall back.
		return nil, &RemoteError{
			Status:  resp.StatusCode,
			Excerpt: truncate(strings.TrimSpace(string(respBody)), maxExcerptLen),
		}
	}
	return out, nil
}
