// Package testutil provides shared fixtures and HTTP test servers.
package testutil

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// NewIPv4Server starts an httptest server bound to 127.0.0.1. Some CI
// sandboxes have no IPv6 loopback.
func NewIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on tcp4: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()
	t.Cleanup(server.Close)
	return server
}

// JSONHandler replies 200 with payload encoded as JSON.
func JSONHandler(t *testing.T, payload any) http.HandlerFunc {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

// RecordingHandler wraps a handler and records every request it serves.
type RecordingHandler struct {
	next  http.Handler
	count atomic.Int32

	mu       sync.Mutex
	requests []*http.Request
}

// NewRecordingHandler wraps next.
func NewRecordingHandler(next http.Handler) *RecordingHandler {
	return &RecordingHandler{next: next}
}

func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.count.Add(1)
	h.mu.Lock()
	h.requests = append(h.requests, r.Clone(r.Context()))
	h.mu.Unlock()
	h.next.ServeHTTP(w, r)
}

// Count returns the number of requests served.
func (h *RecordingHandler) Count() int {
	return int(h.count.Load())
}

// Requests returns copies of the recorded requests.
func (h *RecordingHandler) Requests() []*http.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*http.Request(nil), h.requests...)
}

// Last returns the most recent request, or nil.
func (h *RecordingHandler) Last() *http.Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) == 0 {
		return nil
	}
	return h.requests[len(h.requests)-1]
}
