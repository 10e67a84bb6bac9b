package source

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Params are the scalar arguments of one call.
type Params map[string]string

// Request is one outgoing call, built fresh per Query and consumed once.
type Request struct {
	Operation string
	URL       string
	Query     url.Values
	Signed    bool
}

// Route is the value bound into the signature: the target URL without
// its query string.
func (r Request) Route() string {
	return r.URL
}

// BuildRequest resolves an operation and call parameters into a Request.
func (c Config) BuildRequest(op string, params Params, apiKey string) (Request, error) {
	ep, ok := c.Endpoints[op]
	if !ok {
		return Request{}, fmt.Errorf("source %s: unknown operation %q", c.Name, op)
	}

	used := make(map[string]bool)
	var missing []string
	path := placeholderRe.ReplaceAllStringFunc(ep.Path, func(m string) string {
		key := m[1 : len(m)-1]
		val := strings.TrimSpace(params[key])
		if val == "" {
			missing = append(missing, key)
			return m
		}
		used[key] = true
		return url.PathEscape(val)
	})
	if len(missing) > 0 {
		return Request{}, fmt.Errorf("source %s: operation %s missing path parameter(s) %s",
			c.Name, op, strings.Join(missing, ", "))
	}

	base := c.BaseURL
	if ep.BaseURL != "" {
		base = strings.TrimSuffix(ep.BaseURL, "/")
	}

	query := url.Values{}
	for k, v := range ep.Params {
		query.Set(k, v)
	}
	for k, v := range params {
		if used[k] {
			continue
		}
		if v == "" {
			query.Del(k)
			continue
		}
		query.Set(k, v)
	}
	if c.Auth == AuthAPIKey && apiKey != "" {
		query.Set(c.APIKeyParam, apiKey)
	}

	return Request{
		Operation: op,
		URL:       base + path,
		Query:     query,
		Signed:    ep.Signed,
	}, nil
}
