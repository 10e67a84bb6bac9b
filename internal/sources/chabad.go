package sources

import (
	"context"
	"strconv"

	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/source"
)

// Chabad wraps Chabad.org pages. Most responses are HTML, so results are
// usually extracted fields rather than JSON.
type Chabad struct {
	q Querier
}

// NewChabad creates a Chabad wrapper.
func NewChabad(q Querier) *Chabad {
	return &Chabad{q: q}
}

func optional(key, value string) source.Params {
	if value == "" {
		return nil
	}
	return source.Params{key: value}
}

// DailyStudy returns the daily study page.
func (c *Chabad) DailyStudy(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "daily_study", nil)
}

// DailyWisdom returns the daily wisdom page.
func (c *Chabad) DailyWisdom(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "daily_wisdom", nil)
}

// DailyMitzvah returns the daily mitzvah page.
func (c *Chabad) DailyMitzvah(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "daily_mitzvah", nil)
}

// Stories returns the Chassidic stories page.
func (c *Chabad) Stories(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "stories", nil)
}

// Search searches articles.
func (c *Chabad) Search(ctx context.Context, query string, limit int) (*normalize.Result, bool) {
	params := source.Params{"q": query}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	return c.q.Query(ctx, "search", params)
}

// Calendar returns the Chassidic calendar page.
func (c *Chabad) Calendar(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "calendar", nil)
}

// Tanya returns today's Tanya lesson.
func (c *Chabad) Tanya(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "tanya", nil)
}

// Parsha returns the weekly Torah portion page.
func (c *Chabad) Parsha(ctx context.Context) (*normalize.Result, bool) {
	return c.q.Query(ctx, "parsha", nil)
}

// Centers searches the Chabad centers directory.
func (c *Chabad) Centers(ctx context.Context, location string) (*normalize.Result, bool) {
	return c.q.Query(ctx, "centers", optional("location", location))
}

// Library returns learning resources, optionally for a topic.
func (c *Chabad) Library(ctx context.Context, topic string) (*normalize.Result, bool) {
	return c.q.Query(ctx, "library", optional("topic", topic))
}

// Multimedia returns multimedia listings of a kind (video, audio).
func (c *Chabad) Multimedia(ctx context.Context, kind string) (*normalize.Result, bool) {
	if kind == "" {
		kind = "video"
	}
	return c.q.Query(ctx, "multimedia", source.Params{"type": kind})
}

// AskTheRabbi returns rabbi responses, optionally for a category.
func (c *Chabad) AskTheRabbi(ctx context.Context, category string) (*normalize.Result, bool) {
	return c.q.Query(ctx, "ask_the_rabbi", optional("category", category))
}

// Kosher returns kosher information, optionally for a query.
func (c *Chabad) Kosher(ctx context.Context, query string) (*normalize.Result, bool) {
	return c.q.Query(ctx, "kosher", optional("q", query))
}
