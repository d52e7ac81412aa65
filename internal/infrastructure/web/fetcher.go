// Package web is the polite HTTP client every outbound read goes through.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"pricetrack/internal/domain/entity"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/httpx"
	"pricetrack/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

const (
	defaultTimeout      = 30 * time.Second
	defaultBackoff      = time.Second
	defaultMaxBodyBytes = 8 << 20
)

type Options struct {
	UserAgent         string
	Timeout           time.Duration
	Retries           int
	RetryBackoff      time.Duration
	RequestsPerSecond float64 // zero disables pacing
	MaxBodyBytes      int64
	LogBodyMaxLen     int
	LogLevel          slog.Level
}

// StatusError is a non-2xx answer.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Retryable reports whether trying again later might succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	retries  int
	backoff  time.Duration
	maxBytes int64
}

func NewFetcher(opts Options) *Fetcher {
	var transport http.RoundTripper = http.DefaultTransport

	transport = httpx.NewLoggingRoundTripper(transport,
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		httpx.WithLogFieldMaxLen(opts.LogBodyMaxLen),
		httpx.WithLevel(opts.LogLevel),
	)
	transport = httpx.NewUserAgentRoundTripper(transport, opts.UserAgent)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	maxBytes := opts.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}

	return &Fetcher{
		client:   &http.Client{Transport: transport, Timeout: timeout},
		limiter:  limiter,
		retries:  max(opts.Retries, 0),
		backoff:  backoff,
		maxBytes: maxBytes,
	}
}

// Fetch downloads a page.
func (f *Fetcher) Fetch(ctx context.Context, url string) (entity.Page, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return entity.Page{}, err
	}

	return entity.Page{URL: url, Body: body}, nil
}

// Get returns the body of a successful GET. Server errors, 429 and transport
// failures are retried with jittered exponential backoff.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	backoff := f.backoff

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			wait := backoff/2 + time.Duration(rand.Int64N(int64(backoff))) //nolint:gosec // jitter

			logger(ctx).Debug("retrying request",
				logx.FieldURL, url,
				"attempt", attempt,
				"backoff", wait,
				logx.Error(lastErr),
			)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("web.Get: %w", ctx.Err())
			case <-time.After(wait):
			}

			backoff *= 2
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter.Wait: %w", err)
		}

		body, err := f.do(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("web.Get: retries exhausted: %w", lastErr)
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client.Do: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBytes))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return body, nil
}
