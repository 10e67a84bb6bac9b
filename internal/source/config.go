package source

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultTables []byte

// AuthMode selects how a source authenticates requests.
type AuthMode string

const (
	AuthNone   AuthMode = ""
	AuthSigned AuthMode = "signed"
	AuthAPIKey AuthMode = "api_key"
)

// Endpoint describes one logical operation of a source.
type Endpoint struct {
	// Path is appended to the base URL. {name} placeholders are filled
	// from call parameters.
	Path string `yaml:"path"`
	// BaseURL overrides the source base URL for this endpoint.
	BaseURL string            `yaml:"base_url,omitempty"`
	Params  map[string]string `yaml:"params,omitempty"`
	// Select is a JSONPath expression applied to JSON responses.
	Select string `yaml:"select,omitempty"`
	Signed bool   `yaml:"signed,omitempty"`
	// Excerpt is the rune budget of the readable text excerpt taken from
	// HTML pages. Zero disables it.
	Excerpt int `yaml:"excerpt,omitempty"`
}

// Config is the immutable description of one source.
type Config struct {
	Name        string              `yaml:"-"`
	BaseURL     string              `yaml:"base_url"`
	Interval    time.Duration       `yaml:"interval"`
	Timeout     time.Duration       `yaml:"timeout"`
	UserAgent   string              `yaml:"user_agent,omitempty"`
	Auth        AuthMode            `yaml:"auth,omitempty"`
	APIKeyParam string              `yaml:"api_key_param,omitempty"`
	SniffJSON   bool                `yaml:"sniff_json,omitempty"`
	Endpoints   map[string]Endpoint `yaml:"endpoints"`
}

// Validate checks that the config can build requests.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("source config: missing name")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("source %s: missing base_url", c.Name)
	}
	if c.Interval < 0 {
		return fmt.Errorf("source %s: negative interval %s", c.Name, c.Interval)
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("source %s: no endpoints", c.Name)
	}
	if c.Auth == AuthAPIKey && c.APIKeyParam == "" {
		return fmt.Errorf("source %s: api_key auth needs api_key_param", c.Name)
	}
	switch c.Auth {
	case AuthNone, AuthSigned, AuthAPIKey:
	default:
		return fmt.Errorf("source %s: unknown auth mode %q", c.Name, c.Auth)
	}
	for op, ep := range c.Endpoints {
		if ep.Path == "" && ep.BaseURL == "" {
			return fmt.Errorf("source %s: endpoint %s has no path", c.Name, op)
		}
	}
	return nil
}

// WithOverrides returns a copy with a different base URL and/or interval.
// Zero values keep the current setting.
func (c Config) WithOverrides(baseURL string, interval time.Duration) Config {
	if baseURL != "" {
		c.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if interval > 0 {
		c.Interval = interval
	}
	return c
}

// Operations returns the endpoint names in sorted order.
func (c Config) Operations() []string {
	ops := make([]string, 0, len(c.Endpoints))
	for op := range c.Endpoints {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// ParseTables decodes a YAML document mapping source names to configs.
func ParseTables(data []byte) (map[string]Config, error) {
	var raw map[string]Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse source tables: %w", err)
	}
	configs := make(map[string]Config, len(raw))
	for name, cfg := range raw {
		cfg.Name = name
		cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		configs[name] = cfg
	}
	return configs, nil
}

// DefaultTables returns the built-in source configurations.
func DefaultTables() (map[string]Config, error) {
	return ParseTables(defaultTables)
}
