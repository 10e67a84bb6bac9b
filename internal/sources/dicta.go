package sources

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/lepinkainen/shamash/internal/catalog"
)

var errCatalogUnavailable = errors.New("dicta catalog download returned no usable data")

// Dicta answers book-library questions from the cached Dicta catalog.
type Dicta struct {
	cache *catalog.Cache
}

// NewDicta creates a Dicta wrapper whose catalog is downloaded on first use.
func NewDicta(q Querier, opts ...catalog.Option) *Dicta {
	load := func(ctx context.Context) ([]catalog.Entry, error) {
		res, ok := q.Query(ctx, "books", nil)
		if !ok || !res.IsJSON() {
			return nil, errCatalogUnavailable
		}
		return catalog.DecodeEntries(res.JSON), nil
	}
	return &Dicta{cache: catalog.New(load, opts...)}
}

// Catalog returns the full cached catalog.
func (d *Dicta) Catalog(ctx context.Context) []catalog.Entry {
	return d.cache.Catalog(ctx)
}

// Search finds books by title or author with optional filters.
func (d *Dicta) Search(ctx context.Context, query, category, author string, limit int) []catalog.Entry {
	return d.cache.Search(ctx, query, category, author, limit)
}

// Random picks a random book, optionally from a category.
func (d *Dicta) Random(ctx context.Context, category string, rng *rand.Rand) (catalog.Entry, bool) {
	return d.cache.Random(ctx, category, rng)
}

// Categories lists the catalog's categories with counts.
func (d *Dicta) Categories(ctx context.Context) []catalog.CategoryCount {
	return d.cache.Categories(ctx)
}

// ByAuthor finds books by author.
func (d *Dicta) ByAuthor(ctx context.Context, author string, limit int) []catalog.Entry {
	return d.cache.Search(ctx, "", "", author, limit)
}

// ByPeriod finds books printed between two years.
func (d *Dicta) ByPeriod(ctx context.Context, minYear, maxYear, limit int) []catalog.Entry {
	return d.cache.ByPeriod(ctx, minYear, maxYear, limit)
}

// Statistics summarises the library.
func (d *Dicta) Statistics(ctx context.Context) catalog.Statistics {
	return d.cache.Statistics(ctx)
}

// Chassidic lists Chassidic works.
func (d *Dicta) Chassidic(ctx context.Context, limit int) []catalog.Entry {
	return d.cache.Search(ctx, "", "Sifrei Chasidut", "", limit)
}

// Responsa lists responsa literature.
func (d *Dicta) Responsa(ctx context.Context, limit int) []catalog.Entry {
	return d.cache.Search(ctx, "", "Responsa", "", limit)
}

// TalmudCommentaries lists later commentaries on the Babylonian Talmud.
func (d *Dicta) TalmudCommentaries(ctx context.Context, limit int) []catalog.Entry {
	return d.cache.Search(ctx, "", "Acharonim on Talmud Bavli", "", limit)
}

// BiblicalCommentaries lists Bible commentaries.
func (d *Dicta) BiblicalCommentaries(ctx context.Context, limit int) []catalog.Entry {
	return d.anyCategory(ctx, limit, "Bible Commentary", "Biblical Commentary")
}

// HalachicBooks lists works of Jewish law.
func (d *Dicta) HalachicBooks(ctx context.Context, limit int) []catalog.Entry {
	return d.anyCategory(ctx, limit, "Commentaries on Shulchan Aruch", "Halakhah")
}

func (d *Dicta) anyCategory(ctx context.Context, limit int, categories ...string) []catalog.Entry {
	if limit <= 0 {
		return nil
	}
	var out []catalog.Entry
	for _, cat := range categories {
		out = append(out, d.cache.Search(ctx, "", cat, "", limit)...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
