package sources

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lepinkainen/shamash/internal/source"
	"github.com/lepinkainen/shamash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verses(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = "verse"
	}
	return out
}

func sefariaAgainst(t *testing.T, handler http.Handler) *Sefaria {
	t.Helper()
	server := testutil.NewIPv4Server(t, handler)

	configs, err := source.DefaultTables()
	require.NoError(t, err)
	cfg := configs["sefaria"].WithOverrides(server.URL, time.Millisecond)

	client, err := source.New(cfg, source.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return NewSefaria(client)
}

func TestGetTextEndToEnd(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimPrefix(r.URL.Path, "/texts/")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ref":  ref,
			"text": verses(5),
			"he":   verses(5),
		})
	})
	s := sefariaAgainst(t, handler)
	ctx := context.Background()

	single, ok := s.GetText(ctx, "Genesis 1:1")
	require.True(t, ok)
	assert.Equal(t, "Genesis 1:1", single["ref"])
	assert.Len(t, single["text"], 1)
	assert.Len(t, single["he"], 1)
	assert.Equal(t, true, single[SingleVerseKey])
	assert.NotContains(t, single, TruncatedKey)

	ranged, ok := s.GetText(ctx, "Genesis 1:1-5")
	require.True(t, ok)
	assert.Len(t, ranged["text"], 3)
	assert.Len(t, ranged["he"], 3)
	assert.Equal(t, true, ranged[TruncatedKey])
	assert.NotContains(t, ranged, SingleVerseKey)

	chapter, ok := s.GetText(ctx, "Psalms 23")
	require.True(t, ok)
	assert.Len(t, chapter["text"], 3)
	assert.Equal(t, true, chapter[TruncatedKey])
}

func TestGetTextNotFound(t *testing.T) {
	s := sefariaAgainst(t, http.NotFoundHandler())

	_, ok := s.GetText(context.Background(), "Nonexistent 1:1")
	assert.False(t, ok)
}

func TestGetTextWithoutContentIsAbsent(t *testing.T) {
	q := newFakeQuerier()
	q.set("text", map[string]any{"error": "Unknown ref"})

	_, ok := NewSefaria(q).GetText(context.Background(), "Foo 1:1")
	assert.False(t, ok)
}

func TestGetTextEmptyRef(t *testing.T) {
	q := newFakeQuerier()
	_, ok := NewSefaria(q).GetText(context.Background(), "   ")
	assert.False(t, ok)
	assert.Empty(t, q.calls)
}

func TestTrimVerses(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		data      map[string]any
		wantText  int
		wantHe    int
		single    bool
		truncated bool
	}{
		{name: "single verse of many", ref: "Genesis 1:1", data: map[string]any{"text": verses(4), "he": verses(4)}, wantText: 1, wantHe: 1, single: true},
		{name: "single verse already one", ref: "Genesis 1:1", data: map[string]any{"text": verses(1), "he": verses(1)}, wantText: 1, wantHe: 1},
		{name: "range of two", ref: "Genesis 1:1-2", data: map[string]any{"text": verses(2), "he": verses(2)}, wantText: 2, wantHe: 2},
		{name: "range of ten", ref: "Genesis 1:1-10", data: map[string]any{"text": verses(10), "he": verses(10)}, wantText: 3, wantHe: 3, truncated: true},
		{name: "only hebrew", ref: "Exodus 2", data: map[string]any{"he": verses(6)}, wantHe: 3, truncated: true},
		{name: "string text untouched", ref: "Genesis 1:1", data: map[string]any{"text": "In the beginning", "he": verses(2)}, wantHe: 1, single: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			TrimVerses(tt.data, tt.ref)
			if arr, ok := tt.data["text"].([]any); ok {
				assert.Len(t, arr, tt.wantText)
			}
			if arr, ok := tt.data["he"].([]any); ok {
				assert.Len(t, arr, tt.wantHe)
			}
			_, single := tt.data[SingleVerseKey]
			_, truncated := tt.data[TruncatedKey]
			assert.Equal(t, tt.single, single)
			assert.Equal(t, tt.truncated, truncated)
		})
	}
}

func TestSefariaSearch(t *testing.T) {
	q := newFakeQuerier()
	q.set("search", []any{
		map[string]any{"ref": "Genesis 1:1", "text": "In the beginning", "title": "Genesis"},
		"junk",
		map[string]any{"ref": "John 1:1", "text": "In the beginning was", "title": "Other"},
		map[string]any{"ref": "Psalms 1:1", "title": "Psalms"},
	})

	hits := NewSefaria(q).Search(context.Background(), "beginning", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, SearchHit{Ref: "Genesis 1:1", Text: "In the beginning", Title: "Genesis"}, hits[0])
	assert.Equal(t, "2", q.last().params["limit"])
	assert.Equal(t, "beginning", q.last().params["q"])
}

func TestSefariaSearchNoResults(t *testing.T) {
	assert.Empty(t, NewSefaria(newFakeQuerier()).Search(context.Background(), "x", 5))
}

func TestSefariaCategories(t *testing.T) {
	q := newFakeQuerier()
	q.set("index", []any{
		map[string]any{"title": "Genesis", "categories": []any{"Tanakh", "Torah"}},
		map[string]any{"title": "Berakhot", "categories": []any{"Talmud", "Bavli"}},
		map[string]any{"title": "Exodus", "categories": []any{"Tanakh", "Torah"}},
		map[string]any{"title": "NoCats"},
	})

	assert.Equal(t, []string{"Bavli", "Talmud", "Tanakh", "Torah"}, NewSefaria(q).Categories(context.Background()))
}

func TestRandomTitle(t *testing.T) {
	items := []map[string]any{
		{"title": "Genesis", "categories": []any{"Tanakh", "Torah"}},
		{"title": "Berakhot", "categories": []any{"Talmud"}},
		{"categories": []any{"Talmud"}},
	}
	rng := rand.New(rand.NewPCG(1, 2))

	title, ok := RandomTitle(items, "talmud", rng)
	require.True(t, ok)
	assert.Equal(t, "Berakhot", title)

	// Unknown category falls back to every title.
	title, ok = RandomTitle(items, "kabbalah", rng)
	require.True(t, ok)
	assert.Contains(t, []string{"Genesis", "Berakhot"}, title)

	_, ok = RandomTitle(nil, "", rng)
	assert.False(t, ok)
}

func TestRandomTextFetchesPickedTitle(t *testing.T) {
	q := newFakeQuerier()
	q.set("index", []any{map[string]any{"title": "Berakhot", "categories": []any{"Talmud"}}})
	q.set("text", map[string]any{"ref": "Berakhot", "text": verses(5)})

	data, ok := NewSefaria(q).RandomText(context.Background(), "", rand.New(rand.NewPCG(1, 1)))
	require.True(t, ok)
	assert.Equal(t, "Berakhot", q.last().params["ref"])
	assert.Len(t, data["text"], 3)
}

func TestDailyRef(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{date: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), want: "Pirkei Avot 1:1"},
		{date: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), want: "Genesis 1:1"},
		{date: time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC), want: "Deuteronomy 6:4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DailyRef(tt.date), tt.date.Format(time.DateOnly))
	}
}

func TestDailyTextUsesClock(t *testing.T) {
	q := newFakeQuerier()
	q.set("text", map[string]any{"text": verses(1)})
	s := NewSefaria(q)
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, ok := s.DailyText(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Pirkei Avot 1:1", q.last().params["ref"])
}
