package sources

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/lepinkainen/shamash/internal/source"
)

const randomPoolSize = 50

// NLI wraps the National Library of Israel open library search.
type NLI struct {
	q Querier
}

// NewNLI creates an NLI wrapper.
func NewNLI(q Querier) *NLI {
	return &NLI{q: q}
}

// term strips the separators of the query language so user input cannot
// add clauses.
func term(s string) string {
	s = strings.NewReplacer(",", " ", ";", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// TitleQuery builds "title,contains,<q>" optionally joined with a filter.
func TitleQuery(query, filter string) string {
	clause := "title,contains," + term(query)
	if filter == "" {
		return clause
	}
	return clause + ",AND;" + filter
}

func (n *NLI) search(ctx context.Context, query string, limit int) []any {
	if limit <= 0 {
		limit = 10
	}
	records, ok := array(n.q.Query(ctx, "search", source.Params{
		"query":          query,
		"items_per_page": strconv.Itoa(limit),
	}))
	if !ok {
		return nil
	}
	return records
}

// Search finds records whose title contains query.
func (n *NLI) Search(ctx context.Context, query string, limit int) []any {
	return n.search(ctx, TitleQuery(query, ""), limit)
}

// Manuscripts finds manuscripts by title.
func (n *NLI) Manuscripts(ctx context.Context, query string, limit int) []any {
	return n.search(ctx, TitleQuery(query, "material_type,exact,manuscript"), limit)
}

// Photographs finds historical photographs by title.
func (n *NLI) Photographs(ctx context.Context, query string, limit int) []any {
	return n.search(ctx, TitleQuery(query, "material_type,exact,photograph"), limit)
}

// Maps finds historical maps by place name.
func (n *NLI) Maps(ctx context.Context, location string, limit int) []any {
	return n.search(ctx, TitleQuery(location, "material_type,exact,map"), limit)
}

// Audio finds audio recordings by title.
func (n *NLI) Audio(ctx context.Context, query string, limit int) []any {
	return n.search(ctx, TitleQuery(query, "material_type,exact,audio"), limit)
}

// Books finds books by title in a language (default Hebrew).
func (n *NLI) Books(ctx context.Context, query, language string, limit int) []any {
	if language == "" {
		language = "heb"
	}
	return n.search(ctx, TitleQuery(query, "language,exact,"+term(language)), limit)
}

// ByCreator finds works by creator.
func (n *NLI) ByCreator(ctx context.Context, creator string, limit int) []any {
	return n.search(ctx, "creator,contains,"+term(creator), limit)
}

// BySubject finds works by subject.
func (n *NLI) BySubject(ctx context.Context, subject string, limit int) []any {
	return n.search(ctx, "subject,contains,"+term(subject), limit)
}

// ByDateRange finds works dated between two years, optionally by title.
func (n *NLI) ByDateRange(ctx context.Context, startYear, endYear int, query string, limit int) []any {
	dates := fmt.Sprintf("start_date,range,%d,%d", startYear, endYear)
	if strings.TrimSpace(query) == "" {
		return n.search(ctx, dates, limit)
	}
	return n.search(ctx, TitleQuery(query, dates), limit)
}

// Jerusalem finds works about Jerusalem, optionally by title.
func (n *NLI) Jerusalem(ctx context.Context, query string, limit int) []any {
	const subject = "subject,contains,Jerusalem"
	if strings.TrimSpace(query) == "" {
		return n.search(ctx, subject, limit)
	}
	return n.search(ctx, TitleQuery(query, subject), limit)
}

// RandomItem picks a record from a broad search, optionally of one
// material type.
func (n *NLI) RandomItem(ctx context.Context, materialType string, rng *rand.Rand) (map[string]any, bool) {
	query := "language,exact,heb"
	if materialType != "" {
		query = "material_type,exact," + term(materialType)
	}
	records := n.search(ctx, query, randomPoolSize)
	if len(records) == 0 {
		return nil, false
	}
	m, ok := records[rng.IntN(len(records))].(map[string]any)
	return m, ok
}
