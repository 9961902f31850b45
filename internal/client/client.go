// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

const (
	// DefaultTimeout bounds one HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultReadAttempts is the total number of tries for a read.
	DefaultReadAttempts = 3

	// DefaultRetryBackoff is multiplied by the attempt number between reads.
	DefaultRetryBackoff = 300 * time.Millisecond

	// DeviceIDHeader carries the device id on every request.
	DeviceIDHeader = "X-Device-ID"

	// maxErrorBodySize caps how much of a non-JSON error body is kept.
	maxErrorBodySize = 64 * 1024
)

// Config configures a Client. Only BaseURL is required.
type Config struct {
	BaseURL      string
	DeviceID     string
	Timeout      time.Duration
	ReadAttempts int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Client calls the HTTP JSON API. It is safe for concurrent use.
//
// Reads go through a circuit breaker and are retried with linear backoff.
// Writes are sent once because the server does not deduplicate them.
type Client struct {
	baseURL  string
	deviceID string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker[[]byte]
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a client for cfg.BaseURL, e.g. "http://localhost:3001".
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("client: base URL %q must be an absolute http or https URL", base)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ReadAttempts <= 0 {
		cfg.ReadAttempts = DefaultReadAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:  base,
		deviceID: cfg.DeviceID,
		http:     hc,
		cb:       newBreaker("eatwhat-api"),
		attempts: cfg.ReadAttempts,
		backoff:  cfg.RetryBackoff,
		sleep:    sleepCtx,
	}, nil
}

// DeviceID returns the id sent in X-Device-ID.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// BreakerState reports the read circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 4xx answers mean the server is healthy
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("client circuit breaker state change")
		},
	})
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps well known answers onto the domain errors, so callers can use
// errors.Is(err, models.ErrNotFound) and friends.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return models.ErrNotFound
	case e.Code == "SESSION_CLOSED":
		return models.ErrSessionAlreadyClosed
	case e.Status == http.StatusConflict:
		return models.ErrSessionActive
	case e.Status == http.StatusBadRequest:
		return models.NewValidationError("", e.Message)
	}
	return nil
}

// retryable reports whether a read should be tried again.
func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

// envelope is the server response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Response is the decoded envelope of a write, for callers that show the
// server's confirmation message.
type Response struct {
	Message string
}

// get performs a read with retries and decodes data into dst.
func (c *Client) get(ctx context.Context, path string, query url.Values, dst interface{}) error {
	var (
		body []byte
		err  error
	)
	for attempt := 1; attempt <= c.attempts; attempt++ {
		body, err = c.cb.Execute(func() ([]byte, error) {
			return c.roundTrip(ctx, http.MethodGet, path, query, nil)
		})
		if err == nil || !retryable(err) || attempt == c.attempts {
			break
		}
		logging.Debug().Err(err).Str("path", path).Int("attempt", attempt).Msg("retrying read")
		if serr := c.sleep(ctx, time.Duration(attempt)*c.backoff); serr != nil {
			return serr
		}
	}
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(body, dst)
	return err
}

// send performs a single write and decodes data into dst when non-nil.
func (c *Client) send(ctx context.Context, method, path string, payload, dst interface{}) (*Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}
	raw, err := c.roundTrip(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(raw, dst)
}

// roundTrip sends one request and returns the body of a 2xx answer.
// Anything else becomes an *APIError.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceID != "" {
		req.Header.Set(DeviceIDHeader, c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	} else {
		if len(raw) > maxErrorBodySize {
			raw = raw[:maxErrorBodySize]
		}
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return nil, apiErr
}

func decodeEnvelope(raw []byte, dst interface{}) (*Response, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := "request failed"
		if env.Error != nil {
			msg = env.Error.Message
		}
		return nil, &APIError{Status: http.StatusOK, Message: msg}
	}
	if dst != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &Response{Message: env.Message}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
