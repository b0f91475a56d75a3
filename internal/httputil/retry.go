// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited, retrying GET used by every
// source adapter and by the PDF resolver and downloader.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/litfetch/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff starting at RetryBaseDelay.
//
// When maxRetries is 0 the default (3) is used. On each 429 the response
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last 429 response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Waiter is satisfied by ratelimit.Limiter.
type Waiter interface {
	Wait(ctx context.Context, src types.Source) error
}

// Getter issues GET requests tagged with a source. Each call waits once on
// the limiter for that source; 429 retries are spaced by backoff instead.
type Getter struct {
	Client  *http.Client
	Limiter Waiter
	Config  types.HTTPConfig
}

// NewGetter returns a Getter with an http.Client honouring cfg.Timeout.
func NewGetter(lim Waiter, cfg types.HTTPConfig) *Getter {
	return &Getter{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Limiter: lim,
		Config:  cfg,
	}
}

// Get performs a rate-limited GET and returns the response. Callers own
// the response body. accept may be empty.
func (g *Getter) Get(ctx context.Context, src types.Source, url, accept string) (*http.Response, error) {
	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx, src); err != nil {
			return nil, fmt.Errorf("%s rate limit wait: %w", src, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if g.Config.UserAgent != "" {
		req.Header.Set("User-Agent", g.Config.UserAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	return DoWithRetry(ctx, client, req, g.Config.MaxRetries)
}

// GetOK is Get followed by a status check: anything other than 200 is
// returned as an error after the body is closed.
func (g *Getter) GetOK(ctx context.Context, src types.Source, url, accept string) (*http.Response, error) {
	resp, err := g.Get(ctx, src, url, accept)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}
	return resp, nil
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}
