// Package source implements one configurable client for every upstream
// Jewish-studies service. Per-source behaviour lives in the endpoint tables,
// not in code.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/lepinkainen/shamash/internal/fetch"
	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/ratelimit"
	"github.com/lepinkainen/shamash/internal/signing"
	"github.com/theory/jsonpath"
)

// DefaultUserAgent identifies the bot to upstream sources.
const DefaultUserAgent = "Shamash-Bot/1.0"

// Client composes a rate limiter, fetcher and normalizer for one source.
type Client struct {
	cfg       Config
	limiter   *ratelimit.Limiter
	fetcher   *fetch.Fetcher
	signer    *signing.Signer
	apiKey    string
	selectors map[string]*jsonpath.Path
	logger    *slog.Logger

	publicKey, secretKey string
	fetchOpts            []fetch.Option
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithCredentials sets the signing key pair. Empty keys disable signing.
func WithCredentials(publicKey, secretKey string) Option {
	return func(c *Client) {
		c.publicKey = publicKey
		c.secretKey = secretKey
	}
}

// WithAPIKey sets the key sent in the configured query parameter.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client for the fetcher.
func WithHTTPClient(doer fetch.HTTPDoer) Option {
	return func(c *Client) {
		c.fetchOpts = append(c.fetchOpts, fetch.WithHTTPClient(doer))
	}
}

// WithFetchOptions passes options through to the underlying fetcher.
func WithFetchOptions(opts ...fetch.Option) Option {
	return func(c *Client) {
		c.fetchOpts = append(c.fetchOpts, opts...)
	}
}

// WithRateLimiter replaces the limiter derived from the config interval.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a client for cfg. It fails only on an invalid config or an
// unparsable select expression; missing credentials just disable auth.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		limiter:   ratelimit.New(cfg.Name, cfg.Interval),
		selectors: make(map[string]*jsonpath.Path),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for op, ep := range cfg.Endpoints {
		if ep.Select == "" {
			continue
		}
		path, err := jsonpath.Parse(ep.Select)
		if err != nil {
			return nil, fmt.Errorf("source %s: endpoint %s: parse select %q: %w", cfg.Name, op, ep.Select, err)
		}
		c.selectors[op] = path
	}

	if cfg.Auth == AuthSigned {
		signer, err := signing.New(c.publicKey, c.secretKey)
		switch {
		case err == nil:
			c.signer = signer
		case errors.Is(err, signing.ErrMissingCredentials):
			c.logger.Debug("Signing disabled, no credentials", "source", cfg.Name)
		default:
			c.logger.Warn("Signing disabled, invalid credentials", "source", cfg.Name, "error", err)
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	fetchOpts := append([]fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(userAgent),
		fetch.WithLogger(c.logger),
	}, c.fetchOpts...)
	c.fetcher = fetch.New(cfg.Name, fetchOpts...)

	return c, nil
}

// Name returns the source name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Signed reports whether requests to signed endpoints carry an auth header.
func (c *Client) Signed() bool {
	return c.signer != nil
}

// Query runs one operation. It returns false on any failure: unknown
// operation, bad parameters, rate-limit wait cancelled, or a non-success
// fetch outcome. Failures are logged, never returned.
func (c *Client) Query(ctx context.Context, op string, params Params) (*normalize.Result, bool) {
	req, err := c.cfg.BuildRequest(op, params, c.apiKey)
	if err != nil {
		c.logger.Warn("Cannot build request", "source", c.cfg.Name, "operation", op, "error", err)
		return nil, false
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Debug("Gave up waiting for rate limiter", "source", c.cfg.Name, "operation", op, "error", err)
		return nil, false
	}

	var headers http.Header
	if req.Signed && c.signer != nil {
		headers = http.Header{signing.HeaderName: {c.signer.Header(req.Route(), "")}}
	}

	out := c.fetcher.Fetch(ctx, req.URL, req.Query, headers)
	if !out.OK() {
		c.logger.Debug("Query returned no result", "source", c.cfg.Name, "operation", op,
			"outcome", out.Kind.String(), "error", out.Err(c.cfg.Name))
		return nil, false
	}

	res := normalize.Normalize(out.Body, out.ContentType, c.normalizeOptions(op, req)...)

	if sel, ok := c.selectors[op]; ok && res.IsJSON() {
		nodes := sel.Select(res.JSON)
		switch len(nodes) {
		case 0:
			c.logger.Debug("Select matched nothing", "source", c.cfg.Name, "operation", op,
				"select", c.cfg.Endpoints[op].Select)
			return nil, false
		case 1:
			res = &normalize.Result{JSON: nodes[0]}
		default:
			res = &normalize.Result{JSON: []any(nodes)}
		}
	}

	c.logger.Debug("Query succeeded", "source", c.cfg.Name, "operation", op, "json", res.IsJSON())
	return res, true
}

func (c *Client) normalizeOptions(op string, req Request) []normalize.Option {
	var opts []normalize.Option
	if c.cfg.SniffJSON {
		opts = append(opts, normalize.WithJSONSniffing())
	}
	if limit := c.cfg.Endpoints[op].Excerpt; limit > 0 {
		if pageURL, err := url.Parse(req.URL); err == nil {
			opts = append(opts, normalize.WithReadableContent(pageURL, limit))
		}
	}
	return opts
}

// Close releases the client's connection pool.
func (c *Client) Close() {
	c.fetcher.Close()
}
