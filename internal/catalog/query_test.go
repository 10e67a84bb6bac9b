package catalog_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/lepinkainen/shamash/internal/catalog"
	"github.com/lepinkainen/shamash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(entries []catalog.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.DisplayNameEnglish)
	}
	return out
}

func TestSearchTalmudLimitThree(t *testing.T) {
	entries := testutil.FixtureCatalog()

	got := catalog.Search(entries, "Talmud", "", "", 3)
	require.LessOrEqual(t, len(got), 3)
	for _, e := range got {
		haystack := strings.ToLower(e.DisplayName + " " + e.DisplayNameEnglish + " " + e.Author + " " + e.AuthorEnglish)
		assert.Contains(t, haystack, "talmud")
	}
	assert.Equal(t, []string{"Talmud Bavli Berakhot", "Pnei Yehoshua on Talmud", "Commentators"}, titles(got))
}

func TestSearchStopsAtLimitInCatalogOrder(t *testing.T) {
	got := catalog.Search(testutil.FixtureCatalog(), "talmud", "", "", 2)
	assert.Equal(t, []string{"Talmud Bavli Berakhot", "Pnei Yehoshua on Talmud"}, titles(got))
}

func TestSearchMatchesHebrewFields(t *testing.T) {
	got := catalog.Search(testutil.FixtureCatalog(), "תניא", "", "", 10)
	assert.Equal(t, []string{"Tanya"}, titles(got))
}

func TestSearchFilters(t *testing.T) {
	entries := testutil.FixtureCatalog()

	tests := []struct {
		name     string
		query    string
		category string
		author   string
		want     []string
	}{
		{
			name:     "category only",
			category: "chasidut",
			want:     []string{"Tanya", "Likutei Moharan", "Kedushat Levi"},
		},
		{
			name:     "query and category",
			query:    "talmud",
			category: "acharonim",
			want:     []string{"Pnei Yehoshua on Talmud"},
		},
		{
			name:   "author english",
			author: "breslov",
			want:   []string{"Likutei Moharan"},
		},
		{
			name:   "author hebrew",
			author: "סופר",
			want:   []string{"Responsa Chatam Sofer"},
		},
		{
			name:     "no match",
			query:    "zohar",
			category: "",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Search(entries, tt.query, tt.category, tt.author, 10)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestSearchNonPositiveLimit(t *testing.T) {
	assert.Empty(t, catalog.Search(testutil.FixtureCatalog(), "", "", "", 0))
}

func TestRandomIsDeterministicWithSeed(t *testing.T) {
	entries := testutil.FixtureCatalog()

	a, ok := catalog.Random(entries, "", rand.New(rand.NewPCG(1, 2)))
	require.True(t, ok)
	b, ok := catalog.Random(entries, "", rand.New(rand.NewPCG(1, 2)))
	require.True(t, ok)
	assert.Equal(t, a, b)
}

func TestRandomRespectsCategory(t *testing.T) {
	entries := testutil.FixtureCatalog()
	rng := rand.New(rand.NewPCG(7, 7))

	for range 20 {
		e, ok := catalog.Random(entries, "halakhah", rng)
		require.True(t, ok)
		assert.Equal(t, "Halakhah", e.CategoryEnglish)
	}
}

func TestRandomEmpty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	_, ok := catalog.Random(nil, "", rng)
	assert.False(t, ok)
	_, ok = catalog.Random(testutil.FixtureCatalog(), "kabbalah", rng)
	assert.False(t, ok)
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	got := catalog.Categories(testutil.FixtureCatalog())

	require.Len(t, got, 6)
	assert.Equal(t, catalog.CategoryCount{English: "Talmud", Hebrew: "תלמוד", Count: 1}, got[0])
	assert.Equal(t, "Sifrei Chasidut", got[1].English)
	assert.Equal(t, 3, got[1].Count)
	assert.Equal(t, "Bible Commentary", got[5].English)
	assert.Equal(t, 2, got[5].Count)
}

func TestByPeriod(t *testing.T) {
	entries := testutil.FixtureCatalog()

	got := catalog.ByPeriod(entries, 1800, 2000, 10)
	assert.Equal(t, []string{"Responsa Chatam Sofer", "Mishnah Berurah", "Likutei Moharan", "Arukh HaShulchan"}, titles(got))

	got = catalog.ByPeriod(entries, 1700, 1799, 2)
	assert.Equal(t, []string{"Tanya", "Pnei Yehoshua on Talmud"}, titles(got))
}

func TestStats(t *testing.T) {
	stats := catalog.Stats(testutil.FixtureCatalog())

	assert.Equal(t, 10, stats.TotalBooks)
	assert.Equal(t, 6, stats.TotalCategories)
	assert.Equal(t, 9, stats.TotalAuthors)
	assert.Equal(t, 6, stats.TotalLocations)
	assert.Equal(t, 1520, stats.EarliestYear)
	assert.Equal(t, 1903, stats.LatestYear)
	assert.Len(t, stats.TopCategories, 6)
}

func TestStatsEmpty(t *testing.T) {
	stats := catalog.Stats(nil)
	assert.Zero(t, stats.TotalBooks)
	assert.Zero(t, stats.EarliestYear)
	assert.Empty(t, stats.TopCategories)
}

func TestDecodeEntriesIsTolerant(t *testing.T) {
	raw := []any{
		map[string]any{"displayName": "א", "displayNameEnglish": "Aleph", "printYear": float64(1850)},
		"not an object",
		map[string]any{"displayNameEnglish": "Bet", "printYear": "1850", "author": 7.0},
		map[string]any{"displayNameEnglish": "Gimel", "printYear": 1850.5},
	}

	got := catalog.DecodeEntries(raw)
	require.Len(t, got, 3)
	assert.Equal(t, 1850, got[0].PrintYear)
	assert.Zero(t, got[1].PrintYear)
	assert.Empty(t, got[1].Author)
	assert.Zero(t, got[2].PrintYear)

	assert.Nil(t, catalog.DecodeEntries(map[string]any{}))
}

func TestEntryDisplayHelpers(t *testing.T) {
	e := catalog.Entry{DisplayName: "תניא", Author: "שניאור זלמן"}
	assert.Equal(t, "תניא", e.Title())
	assert.Equal(t, "שניאור זלמן", e.AuthorName())

	e.DisplayNameEnglish = "Tanya"
	e.AuthorEnglish = "Shneur Zalman"
	assert.Equal(t, "Tanya", e.Title())
	assert.Equal(t, "Shneur Zalman", e.AuthorName())
}
