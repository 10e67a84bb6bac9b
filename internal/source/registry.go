package source

import (
	"fmt"
	"sort"
)

// Credentials are the optional secrets of one source.
type Credentials struct {
	PublicKey string
	SecretKey string
	APIKey    string
}

// Registry holds one client per configured source.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry builds a client for every config. Shared options apply to all
// clients; credentials are matched by source name.
func NewRegistry(configs map[string]Config, creds map[string]Credentials, opts ...Option) (*Registry, error) {
	r := &Registry{clients: make(map[string]*Client, len(configs))}
	for name, cfg := range configs {
		cred := creds[name]
		clientOpts := append([]Option{
			WithCredentials(cred.PublicKey, cred.SecretKey),
			WithAPIKey(cred.APIKey),
		}, opts...)
		client, err := New(cfg, clientOpts...)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("build client %s: %w", name, err)
		}
		r.clients[name] = client
	}
	return r, nil
}

// Get returns the client for a source.
func (r *Registry) Get(name string) (*Client, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Names returns the configured source names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases every client's connection pool.
func (r *Registry) Close() {
	for _, c := range r.clients {
		c.Close()
	}
}
