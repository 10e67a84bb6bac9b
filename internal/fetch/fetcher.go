// Package fetch issues GET requests against upstream sources and classifies
// every response or failure into an Outcome. It never returns an error.
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRateLimitDelay = 2 * time.Second
	defaultMaxBodySize    = 16 << 20
	errorBodySize         = 512
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Fetcher owns one lazily created connection pool for a single source.
type Fetcher struct {
	name           string
	timeout        time.Duration
	userAgent      string
	rateLimitDelay time.Duration
	maxBodySize    int64
	sleep          func(context.Context, time.Duration)
	logger         *slog.Logger

	mu     sync.Mutex
	client HTTPDoer
	pool   *http.Client
}

// Option is a functional option for configuring the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client. The fetcher will not close it.
func WithHTTPClient(c HTTPDoer) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the lazily created client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRateLimitDelay sets the fixed delay applied after a 429 response.
func WithRateLimitDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.rateLimitDelay = d
		}
	}
}

// WithMaxBodySize caps how many bytes of a successful body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithSleeper replaces the function used for the 429 delay.
func WithSleeper(sleep func(context.Context, time.Duration)) Option {
	return func(f *Fetcher) {
		if sleep != nil {
			f.sleep = sleep
		}
	}
}

// WithLogger sets the logger used for outcome diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher for the named source. No connections are opened
// until the first Fetch.
func New(name string, opts ...Option) *Fetcher {
	f := &Fetcher{
		name:           name,
		timeout:        defaultTimeout,
		rateLimitDelay: defaultRateLimitDelay,
		maxBodySize:    defaultMaxBodySize,
		sleep:          sleepContext,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the source name used in logs.
func (f *Fetcher) Name() string {
	return f.name
}

func (f *Fetcher) httpClient() HTTPDoer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		f.pool = &http.Client{
			Timeout: f.timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   4,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: f.timeout,
			},
		}
		f.client = f.pool
	}
	return f.client
}

// Fetch issues a single GET to rawURL with params merged into its query string.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params url.Values, headers http.Header) Outcome {
	target, err := buildURL(rawURL, params)
	if err != nil {
		f.logger.Warn("Invalid request URL", "source", f.name, "url", rawURL, "error", err)
		return Outcome{Kind: TransportFailure, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		f.logger.Warn("Failed to build request", "source", f.name, "url", target, "error", err)
		return Outcome{Kind: TransportFailure, Cause: err}
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if f.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient().Do(req)
	if err != nil {
		f.logger.Warn("Request failed", "source", f.name, "url", target, "error", err)
		return Outcome{Kind: TransportFailure, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
		if err != nil {
			f.logger.Warn("Failed to read response body", "source", f.name, "url", target, "error", err)
			return Outcome{Kind: TransportFailure, Status: resp.StatusCode, Cause: err}
		}
		return Outcome{
			Kind:        Success,
			Status:      resp.StatusCode,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
		}

	case resp.StatusCode == http.StatusNotFound:
		f.logger.Debug("Resource not found", "source", f.name, "url", target)
		return Outcome{Kind: NotFound, Status: resp.StatusCode}

	case resp.StatusCode == http.StatusTooManyRequests:
		f.logger.Warn("Rate limited by upstream", "source", f.name, "url", target, "delay", f.rateLimitDelay)
		f.sleep(ctx, f.rateLimitDelay)
		return Outcome{Kind: RateLimited, Status: resp.StatusCode, Waited: f.rateLimitDelay}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodySize))
		f.logger.Warn("Unexpected upstream status", "source", f.name, "url", target,
			"status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return Outcome{Kind: ServerError, Status: resp.StatusCode, Body: body}
	}
}

// Close releases idle connections held by the lazily created pool.
// Injected clients are left alone.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pool != nil {
		f.pool.CloseIdleConnections()
	}
}

func buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
