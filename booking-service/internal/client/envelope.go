// Package client holds the HTTP clients the orchestrator uses to call
// Inventory and Payment. Every call is wrapped in the shared retry policy
// and classifies its outcome into the clear/unclear split the orchestrator
// needs rather than leaving raw transport errors for the
// caller to interpret.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/distributed-hotel-saga/shared-domain/retry"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type baseClient struct {
	baseURL    string
	httpClient *http.Client
	retry      retry.Policy
}

func newBaseClient(baseURL string, httpClient *http.Client, policy retry.Policy) baseClient {
	if policy.ShouldRetry == nil {
		policy.ShouldRetry = func(err error) bool { return kinderr.Is(err, kinderr.UnclearRemoteOutcome) }
	}
	return baseClient{baseURL: baseURL, httpClient: httpClient, retry: policy}
}

// call retries only transport-classified-unclear outcomes; a clear business
// error from the remote (4xx with a body) fails fast.
func (c baseClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var lastErr error
	_ = c.retry.Do(ctx, func() error {
		lastErr = c.doOnce(ctx, method, path, body, out)
		return lastErr
	})
	return lastErr
}

func (c baseClient) doOnce(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return kinderr.Internal("failed to encode request body", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return kinderr.Internal("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return kinderr.Unclear("failed to decode remote response body", err)
	}

	return classifyResponse(resp.StatusCode, env, out)
}

func classifyResponse(status int, env envelope, out interface{}) error {
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return kinderr.Internal("failed to decode response data", err)
			}
		}
		return nil
	case status == http.StatusConflict:
		return kinderr.IdempotencyConflict()
	case status == http.StatusNotFound:
		return kinderr.NotFound(errMessage(env, "resource not found"))
	case status >= 400 && status < 500:
		code := kinderr.Code("UNKNOWN")
		if env.Error != nil {
			code = kinderr.Code(env.Error.Code)
		}
		return kinderr.New(kinderr.BusinessError, code, errMessage(env, "remote rejected the request"))
	default:
		// Accepted, 502/503/504, or anything else unclassified: the remote's
		// outcome is undetermined, never treated as a definite negative.
		return kinderr.Unclear(fmt.Sprintf("remote responded with status %d", status), nil)
	}
}

func errMessage(env envelope, fallback string) string {
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	if env.Message != "" {
		return env.Message
	}
	return fallback
}

// classifyTransportErr defaults to unclear for anything it doesn't
// recognize: a deadline expiry or reset is unclear, and an
// unrecognized transport error is safer treated the same way than assumed
// to be a definite negative.
func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return kinderr.Unclear("remote call deadline exceeded", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return kinderr.Unclear("remote call timed out", err)
	}
	return kinderr.Unclear("remote call transport error", err)
}
