package sources

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lepinkainen/shamash/internal/source"
	"github.com/lepinkainen/shamash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeonameID(t *testing.T) {
	assert.Equal(t, "281184", GeonameID("Jerusalem"))
	assert.Equal(t, "293397", GeonameID("  tel aviv "))
	assert.Equal(t, "5128581", GeonameID("Atlantis"))
	assert.Equal(t, "5128581", GeonameID(""))
	for _, city := range KnownLocations() {
		assert.NotEmpty(t, geonameIDs[strings.ToLower(city)], city)
	}
}

func fixedHebcal(q Querier) *Hebcal {
	h := NewHebcal(q)
	h.now = func() time.Time { return time.Date(2025, 4, 12, 10, 0, 0, 0, time.UTC) }
	return h
}

func TestHebcalShabbatUsesGeonameID(t *testing.T) {
	q := newFakeQuerier()
	q.set("shabbat", map[string]any{"title": "Hebcal London"})

	data, ok := fixedHebcal(q).Shabbat(context.Background(), "London")
	require.True(t, ok)
	assert.Equal(t, "Hebcal London", data["title"])
	assert.Equal(t, source.Params{"geonameid": "2643743"}, q.last().params)
}

func TestHebcalHolidaysDefaultsToCurrentYear(t *testing.T) {
	q := newFakeQuerier()
	q.set("holidays", []any{map[string]any{"title": "Pesach I"}})

	items, ok := fixedHebcal(q).Holidays(context.Background(), 0)
	require.True(t, ok)
	assert.Len(t, items, 1)
	assert.Equal(t, "2025", q.last().params["year"])
}

func TestHebcalTorahReadingPicksParasha(t *testing.T) {
	q := newFakeQuerier()
	q.set("torah_reading", []any{
		map[string]any{"title": "Shabbat HaGadol", "category": "holiday"},
		map[string]any{"title": "Parashat Tzav", "category": "parashat"},
	})

	item, ok := fixedHebcal(q).TorahReading(context.Background(), time.Time{})
	require.True(t, ok)
	assert.Equal(t, "Parashat Tzav", item["title"])
	assert.Equal(t, "2025-04-12", q.last().params["start"])
	assert.Equal(t, "2025-04-12", q.last().params["end"])
}

func TestHebcalTorahReadingNoneMatching(t *testing.T) {
	q := newFakeQuerier()
	q.set("torah_reading", []any{map[string]any{"title": "Rosh Chodesh", "category": "roshchodesh"}})

	_, ok := fixedHebcal(q).TorahReading(context.Background(), time.Time{})
	assert.False(t, ok)
}

func TestHebcalConvertDate(t *testing.T) {
	q := newFakeQuerier()
	q.set("converter", map[string]any{"hebrew": "י״ד בְּנִיסָן 5785"})

	_, ok := fixedHebcal(q).ConvertDate(context.Background(), time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, source.Params{"gy": "2025", "gm": "4", "gd": "12"}, q.last().params)
}

func TestHebcalZmanim(t *testing.T) {
	q := newFakeQuerier()
	q.set("zmanim", map[string]any{"times": map[string]any{}})

	_, ok := fixedHebcal(q).Zmanim(context.Background(), "Paris", time.Time{})
	require.True(t, ok)
	assert.Equal(t, source.Params{"geonameid": "2988507", "date": "2025-04-12"}, q.last().params)
}

func TestHebcalHolidaysEndToEnd(t *testing.T) {
	recorder := testutil.NewRecordingHandler(testutil.JSONHandler(t, map[string]any{
		"title": "Hebcal 2025",
		"items": []any{
			map[string]any{"title": "Purim", "date": "2025-03-14"},
			map[string]any{"title": "Pesach I", "date": "2025-04-13"},
		},
	}))
	server := testutil.NewIPv4Server(t, recorder)

	configs, err := source.DefaultTables()
	require.NoError(t, err)
	client, err := source.New(configs["hebcal"].WithOverrides(server.URL, 0), source.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	items, ok := NewHebcal(client).Holidays(context.Background(), 2025)
	require.True(t, ok)
	assert.Len(t, items, 2)

	req := recorder.Last()
	require.NotNil(t, req)
	assert.Equal(t, "/hebcal", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "json", q.Get("cfg"))
	assert.Equal(t, "2025", q.Get("year"))
	for _, flag := range []string{"maj", "min", "mod", "nx", "ss", "mf"} {
		assert.Equal(t, "on", q.Get(flag), flag)
	}
}
