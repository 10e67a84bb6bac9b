package sources

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/shamash/internal/source"
)

const (
	maxRangeVerses = 3
	// SingleVerseKey marks a payload cut down to its first verse.
	SingleVerseKey = "single_verse"
	// TruncatedKey marks a range payload cut down to maxRangeVerses.
	TruncatedKey = "truncated"
)

// DailyRotation is cycled through by date for the daily text.
var DailyRotation = []string{
	"Psalms 1:1",
	"Pirkei Avot 1:1",
	"Talmud Berakhot 2a",
	"Genesis 1:1",
	"Deuteronomy 6:4",
}

// SearchHit is one full-text search match.
type SearchHit struct {
	Ref   string `json:"ref"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Sefaria wraps the Sefaria text library API.
type Sefaria struct {
	q   Querier
	now func() time.Time
}

// NewSefaria creates a Sefaria wrapper.
func NewSefaria(q Querier) *Sefaria {
	return &Sefaria{q: q, now: time.Now}
}

// GetText fetches a reference. Single verses ("Genesis 1:1") are cut to one
// element and ranges or chapters to three, with a marker key recording it.
// Payloads with neither "text" nor "he" count as absent.
func (s *Sefaria) GetText(ctx context.Context, ref string) (map[string]any, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	data, ok := object(s.q.Query(ctx, "text", source.Params{"ref": ref}))
	if !ok {
		return nil, false
	}
	_, hasText := data["text"]
	_, hasHe := data["he"]
	if !hasText && !hasHe {
		slog.Warn("No text content for reference", "ref", ref)
		return nil, false
	}
	TrimVerses(data, ref)
	return data, true
}

// TrimVerses applies the single-verse / range truncation to data in place.
func TrimVerses(data map[string]any, ref string) {
	single := strings.Contains(ref, ":") && !strings.Contains(ref, "-")
	for _, key := range []string{"text", "he"} {
		verses, ok := data[key].([]any)
		if !ok {
			continue
		}
		switch {
		case single && len(verses) > 1:
			data[key] = verses[:1]
			data[SingleVerseKey] = true
		case !single && len(verses) > maxRangeVerses:
			data[key] = verses[:maxRangeVerses]
			data[TruncatedKey] = true
		}
	}
}

// Search runs a full-text search and returns at most limit hits.
func (s *Sefaria) Search(ctx context.Context, query string, limit int) []SearchHit {
	if limit <= 0 {
		limit = 10
	}
	hits, ok := array(s.q.Query(ctx, "search", source.Params{"q": query, "limit": strconv.Itoa(limit)}))
	if !ok {
		return nil
	}
	var out []SearchHit
	for _, h := range hits {
		m, ok := h.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, SearchHit{
			Ref:   stringField(m, "ref"),
			Text:  stringField(m, "text"),
			Title: stringField(m, "title"),
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (s *Sefaria) index(ctx context.Context) ([]map[string]any, bool) {
	items, ok := array(s.q.Query(ctx, "index", nil))
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true
}

// Categories returns the sorted union of categories in the library index.
func (s *Sefaria) Categories(ctx context.Context) []string {
	items, ok := s.index(ctx)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, it := range items {
		cats, _ := it["categories"].([]any)
		for _, c := range cats {
			if name, ok := c.(string); ok && name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RandomTitle picks a title from the index. A category narrows the pool
// unless nothing matches it, in which case all titles are used.
func RandomTitle(items []map[string]any, category string, rng *rand.Rand) (string, bool) {
	var all, matching []string
	cat := strings.ToLower(category)
	for _, it := range items {
		title := stringField(it, "title")
		if title == "" {
			continue
		}
		all = append(all, title)
		if cat == "" {
			continue
		}
		cats, _ := it["categories"].([]any)
		for _, c := range cats {
			if name, ok := c.(string); ok && strings.Contains(strings.ToLower(name), cat) {
				matching = append(matching, title)
				break
			}
		}
	}
	pool := all
	if len(matching) > 0 {
		pool = matching
	}
	if len(pool) == 0 {
		return "", false
	}
	return pool[rng.IntN(len(pool))], true
}

// RandomText fetches a random text from the index.
func (s *Sefaria) RandomText(ctx context.Context, category string, rng *rand.Rand) (map[string]any, bool) {
	items, ok := s.index(ctx)
	if !ok {
		return nil, false
	}
	title, ok := RandomTitle(items, category, rng)
	if !ok {
		return nil, false
	}
	return s.GetText(ctx, title)
}

// DailyRef returns the reference of the day for date.
func DailyRef(date time.Time) string {
	return DailyRotation[dayOrdinal(date)%len(DailyRotation)]
}

// DailyText fetches today's rotating text.
func (s *Sefaria) DailyText(ctx context.Context) (map[string]any, bool) {
	ref := DailyRef(s.now())
	slog.Info("Getting daily text", "ref", ref)
	return s.GetText(ctx, ref)
}
