// Package provider – shared HTTP engine
//
// This file implements the throttled, retrying GET helper the per-platform
// clients are built on. Throttling uses a token-bucket limiter so one
// misconfigured source cannot exhaust a platform's API quota for the whole
// process; retries cover transient failures (network errors, 5xx, 429) with
// linear backoff and give up immediately on other client errors.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a provider response is read. Review pages
// are small; anything larger is a platform bug or an abuse vector.
const maxResponseBytes = 4 << 20

// apiClient is the throttled HTTP engine shared by the platform clients.
type apiClient struct {
	http    *http.Client
	limiter *rate.Limiter
	retries int
}

// newAPIClient builds an engine with the given request timeout, sustained
// request rate, burst size, and retry budget for transient failures.
func newAPIClient(timeout time.Duration, rps float64, burst, retries int) *apiClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 1
	}
	if retries < 0 {
		retries = 0
	}
	return &apiClient{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		retries: retries,
	}
}

// getJSON issues a throttled GET and decodes the JSON response into out.
// Transient failures are retried with linear backoff; non-transient HTTP
// errors (4xx other than 429) are returned on the first occurrence.
func (c *apiClient) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := c.once(ctx, url, header, out)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !se.transient() {
			return err
		}
	}
	return lastErr
}

// once performs a single GET attempt.
func (c *apiClient) once(ctx context.Context, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &statusError{Code: resp.StatusCode, Body: preview(body)}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
	}
	return nil
}

// statusError carries a non-2xx provider response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// transient reports whether retrying could plausibly succeed.
func (e *statusError) transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// preview clips an error body for inclusion in error strings.
func preview(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
