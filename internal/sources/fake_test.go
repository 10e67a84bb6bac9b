package sources

import (
	"context"
	"sync"

	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/source"
)

type queryCall struct {
	op     string
	params source.Params
}

type fakeQuerier struct {
	mu      sync.Mutex
	results map[string]*normalize.Result
	calls   []queryCall
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{results: make(map[string]*normalize.Result)}
}

func (f *fakeQuerier) set(op string, v any) {
	f.results[op] = &normalize.Result{JSON: v}
}

func (f *fakeQuerier) Query(_ context.Context, op string, params source.Params) (*normalize.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, queryCall{op: op, params: params})
	res, ok := f.results[op]
	return res, ok
}

func (f *fakeQuerier) last() queryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return queryCall{}
	}
	return f.calls[len(f.calls)-1]
}
