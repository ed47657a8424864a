// Social Media Analytics Manager - Creator Analytics Sync Service
// Copyright 2026 Shreyash Singh (ShreyashSingh857)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000

package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/logging"
	"github.com/ShreyashSingh857/SocialMediaAnalyticManager-sub000/internal/metrics"
)

const (
	// maxErrorBodySize caps how much of an upstream error body is read.
	maxErrorBodySize = 64 * 1024

	// maxRateLimitRetries bounds reactive backoff on 429 responses.
	maxRateLimitRetries = 3

	// baseBackoff is the initial delay for the 429 retry loop.
	baseBackoff = 1 * time.Second
)

// httpClient is the shared request machinery for all upstream APIs: a
// proactive token-bucket limiter plus a reactive 429 retry loop honoring
// Retry-After.
type httpClient struct {
	http    *http.Client
	limiter *rate.Limiter // nil disables proactive limiting
}

func newHTTPClient(timeout time.Duration, requestsPerSecond float64) *httpClient {
	c := &httpClient{
		http: &http.Client{Timeout: timeout},
	}
	if requestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return c
}

// doRequestWithRateLimit executes an authorized GET against url and returns
// the response body. 429 responses are retried with exponential backoff,
// honoring Retry-After when present. Any other non-2xx status is classified
// and returned as *Error.
func (c *httpClient) doRequestWithRateLimit(ctx context.Context, op, url, accessToken string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &Error{Kind: KindUnavailable, Op: op, Err: err}
			}
		}

		body, status, retryHint, err := c.doOnce(ctx, op, url, accessToken)
		if err != nil {
			return nil, err
		}
		if status < 300 {
			return body, nil
		}

		if status == http.StatusTooManyRequests && attempt < maxRateLimitRetries {
			wait := backoffDelay(attempt, retryHint)
			logging.Warn().
				Str("op", op).
				Int("attempt", attempt+1).
				Dur("wait", wait).
				Msg("Rate limited by upstream, backing off")
			select {
			case <-ctx.Done():
				return nil, &Error{Kind: KindUnavailable, Op: op, Err: ctx.Err()}
			case <-time.After(wait):
			}
			continue
		}

		return nil, &Error{
			Kind:   classifyStatus(status),
			Status: status,
			Op:     op,
			Body:   string(body),
		}
	}
}

// doOnce performs a single request. Non-2xx bodies are read with a size cap
// so a large upstream error page cannot balloon memory. retryHint carries a
// parsed Retry-After value, 0 when absent.
func (c *httpClient) doOnce(ctx context.Context, op, url, accessToken string) ([]byte, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, &Error{Kind: KindUnavailable, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(req.URL.Host, "error").
			Observe(time.Since(start).Seconds())
		return nil, 0, 0, &Error{Kind: KindUnavailable, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.UpstreamRequestDuration.
		WithLabelValues(req.URL.Host, strconv.Itoa(resp.StatusCode/100*100)).
		Observe(time.Since(start).Seconds())

	var retryHint time.Duration
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		retryHint = time.Duration(secs) * time.Second
	}

	if resp.StatusCode >= 300 {
		body := readBodyForError(resp.Body)
		return body, resp.StatusCode, retryHint, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, &Error{Kind: KindUnavailable, Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, resp.StatusCode, retryHint, nil
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return nil
	}
	return body
}

// backoffDelay computes the next 429 wait. A Retry-After hint from the
// server wins over the exponential schedule.
func backoffDelay(attempt int, retryHint time.Duration) time.Duration {
	if retryHint > 0 {
		return retryHint
	}
	return baseBackoff * time.Duration(1<<attempt)
}

// getJSON fetches url and decodes the response into T.
func getJSON[T any](ctx context.Context, c *httpClient, op, url, accessToken string) (*T, error) {
	body, err := c.doRequestWithRateLimit(ctx, op, url, accessToken)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &out, nil
}
