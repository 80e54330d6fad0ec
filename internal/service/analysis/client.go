// Package analysis calls the external AI provider that produces clinical
// summaries.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kingrain94/clinic-access-core/internal/config"
)

var (
	ErrMissingAPIKey = errors.New("analysis: api key is required")
	ErrRejected      = errors.New("analysis: request rejected by provider")
	ErrEmptyResult   = errors.New("analysis: provider returned no result")
)

type Request struct {
	TenantID  string
	Provider  string
	APIKey    string
	PatientID string
	Prompt    string
}

type Result struct {
	Text  string
	Model string
}

type requestBody struct {
	Provider  string `json:"provider"`
	PatientID string `json:"patient_id,omitempty"`
	Prompt    string `json:"prompt"`
}

type responseBody struct {
	Result string `json:"result"`
	Model  string `json:"model"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

type HTTPClient struct {
	endpoint      string
	client        *http.Client
	maxTries      uint
	retryInterval time.Duration
}

type Option func(*HTTPClient)

func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithRetry sets how many attempts are made and the first backoff interval.
func WithRetry(maxTries uint, interval time.Duration) Option {
	return func(c *HTTPClient) {
		c.maxTries = maxTries
		c.retryInterval = interval
	}
}

func NewHTTPClient(cfg config.AIConfig, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		endpoint:      strings.TrimSpace(cfg.Endpoint),
		client:        &http.Client{Timeout: cfg.Timeout},
		maxTries:      3,
		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze posts the prompt to the provider. Network errors, 429 and 5xx are
// retried with exponential backoff; other 4xx are returned at once.
func (c *HTTPClient) Analyze(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(requestBody{
		Provider:  req.Provider,
		PatientID: req.PatientID,
		Prompt:    req.Prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval

	return backoff.Retry(ctx, func() (*Result, error) {
		return c.do(ctx, req, payload)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
}

func (c *HTTPClient) do(ctx context.Context, req Request, payload []byte) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	if req.TenantID != "" {
		httpReq.Header.Set("X-Tenant-ID", req.TenantID)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	var body responseBody
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("analysis provider returned %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		message := strings.TrimSpace(body.Error.Message)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, message))
	}

	if decodeErr != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode analysis response: %w", decodeErr))
	}
	if strings.TrimSpace(body.Result) == "" {
		return nil, backoff.Permanent(ErrEmptyResult)
	}
	return &Result{Text: body.Result, Model: body.Model}, nil
}
