// Package sources exposes the domain methods of each upstream service as
// thin parameter mappings over a generic source client.
package sources

import (
	"context"
	"time"

	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/source"
)

// Querier runs one configured operation. *source.Client implements it.
type Querier interface {
	Query(ctx context.Context, op string, params source.Params) (*normalize.Result, bool)
}

var _ Querier = (*source.Client)(nil)

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01,
// counting 0001-01-01 as day 1.
const unixEpochOrdinal = 719163

func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix()/86400) + unixEpochOrdinal
}

func object(res *normalize.Result, ok bool) (map[string]any, bool) {
	if !ok {
		return nil, false
	}
	obj, isObj := res.Object()
	if !isObj {
		return nil, false
	}
	return obj, true
}

func array(res *normalize.Result, ok bool) ([]any, bool) {
	if !ok {
		return nil, false
	}
	if arr, isArr := res.Array(); isArr {
		return arr, true
	}
	// A single selected object is a one-element list.
	if obj, isObj := res.Object(); isObj {
		return []any{obj}, true
	}
	return nil, false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
