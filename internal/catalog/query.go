package catalog

import (
	"math/rand/v2"
	"strings"
)

// CategoryCount is one distinct category with the number of books in it.
type CategoryCount struct {
	English string `json:"english"`
	Hebrew  string `json:"hebrew"`
	Count   int    `json:"count"`
}

// Statistics summarises the catalog.
type Statistics struct {
	TotalBooks      int             `json:"total_books"`
	TotalCategories int             `json:"total_categories"`
	TotalAuthors    int             `json:"total_authors"`
	TotalLocations  int             `json:"total_locations"`
	EarliestYear    int             `json:"earliest_year"`
	LatestYear      int             `json:"latest_year"`
	TopCategories   []CategoryCount `json:"categories"`
}

const topCategories = 10

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// Search scans entries in order and stops at limit matches. The query must
// appear in a title or author; non-empty category and author filters narrow
// further. All comparisons are case-insensitive substrings.
func Search(entries []Entry, query, category, author string, limit int) []Entry {
	if limit <= 0 {
		return nil
	}
	q := strings.ToLower(query)
	cat := strings.ToLower(category)
	auth := strings.ToLower(author)

	var out []Entry
	for _, e := range entries {
		if !containsFold(e.DisplayName, q) && !containsFold(e.DisplayNameEnglish, q) &&
			!containsFold(e.Author, q) && !containsFold(e.AuthorEnglish, q) {
			continue
		}
		if cat != "" && !containsFold(e.CategoryEnglish, cat) {
			continue
		}
		if auth != "" && !containsFold(e.Author, auth) && !containsFold(e.AuthorEnglish, auth) {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Random picks a uniformly random entry, optionally restricted to a category.
// It reports false when nothing matches.
func Random(entries []Entry, category string, rng *rand.Rand) (Entry, bool) {
	pool := entries
	if category != "" {
		cat := strings.ToLower(category)
		pool = nil
		for _, e := range entries {
			if containsFold(e.CategoryEnglish, cat) {
				pool = append(pool, e)
			}
		}
	}
	if len(pool) == 0 {
		return Entry{}, false
	}
	return pool[rng.IntN(len(pool))], true
}

// Categories lists distinct English categories in first-seen order.
func Categories(entries []Entry) []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	for _, e := range entries {
		if e.CategoryEnglish == "" {
			continue
		}
		if i, ok := index[e.CategoryEnglish]; ok {
			out[i].Count++
			continue
		}
		index[e.CategoryEnglish] = len(out)
		out = append(out, CategoryCount{English: e.CategoryEnglish, Hebrew: e.Category, Count: 1})
	}
	return out
}

// ByPeriod returns entries printed between minYear and maxYear inclusive.
func ByPeriod(entries []Entry, minYear, maxYear, limit int) []Entry {
	if limit <= 0 {
		return nil
	}
	var out []Entry
	for _, e := range entries {
		if e.PrintYear != 0 && e.PrintYear >= minYear && e.PrintYear <= maxYear {
			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Stats computes catalog-wide totals.
func Stats(entries []Entry) Statistics {
	cats := Categories(entries)
	authors := make(map[string]struct{})
	locations := make(map[string]struct{})
	stats := Statistics{TotalBooks: len(entries), TotalCategories: len(cats)}

	for _, e := range entries {
		if e.AuthorEnglish != "" {
			authors[e.AuthorEnglish] = struct{}{}
		}
		if e.PrintLocationEnglish != "" {
			locations[e.PrintLocationEnglish] = struct{}{}
		}
		if e.PrintYear == 0 {
			continue
		}
		if stats.EarliestYear == 0 || e.PrintYear < stats.EarliestYear {
			stats.EarliestYear = e.PrintYear
		}
		if e.PrintYear > stats.LatestYear {
			stats.LatestYear = e.PrintYear
		}
	}
	stats.TotalAuthors = len(authors)
	stats.TotalLocations = len(locations)
	stats.TopCategories = cats[:min(len(cats), topCategories)]
	return stats
}
