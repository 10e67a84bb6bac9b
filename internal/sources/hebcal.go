package sources

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/shamash/internal/source"
)

// DefaultLocation is used when a location is empty or unknown.
const DefaultLocation = "new york"

var geonameIDs = map[string]string{
	"new york":    "5128581",
	"los angeles": "5368361",
	"chicago":     "4887398",
	"miami":       "4164138",
	"jerusalem":   "281184",
	"tel aviv":    "293397",
	"london":      "2643743",
	"paris":       "2988507",
}

// GeonameID maps a city name to its geonames id, defaulting to New York.
func GeonameID(location string) string {
	if id, ok := geonameIDs[strings.ToLower(strings.TrimSpace(location))]; ok {
		return id
	}
	return geonameIDs[DefaultLocation]
}

// KnownLocations lists the supported city names.
func KnownLocations() []string {
	return []string{"New York", "Los Angeles", "Chicago", "Miami", "Jerusalem", "Tel Aviv", "London", "Paris"}
}

// Hebcal wraps the Hebcal calendar API.
type Hebcal struct {
	q   Querier
	now func() time.Time
}

// NewHebcal creates a Hebcal wrapper.
func NewHebcal(q Querier) *Hebcal {
	return &Hebcal{q: q, now: time.Now}
}

// Shabbat returns candle lighting and havdalah times for a city.
func (h *Hebcal) Shabbat(ctx context.Context, location string) (map[string]any, bool) {
	return object(h.q.Query(ctx, "shabbat", source.Params{"geonameid": GeonameID(location)}))
}

// Holidays returns the calendar items of a year. Zero means this year.
func (h *Hebcal) Holidays(ctx context.Context, year int) ([]any, bool) {
	if year == 0 {
		year = h.now().Year()
	}
	return array(h.q.Query(ctx, "holidays", source.Params{"year": strconv.Itoa(year)}))
}

// TorahReading returns the parashah item for a date. A zero date means today.
func (h *Hebcal) TorahReading(ctx context.Context, date time.Time) (map[string]any, bool) {
	if date.IsZero() {
		date = h.now()
	}
	day := date.Format(time.DateOnly)
	items, ok := array(h.q.Query(ctx, "torah_reading", source.Params{"start": day, "end": day}))
	if !ok {
		return nil, false
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(stringField(m, "category")), "torah") ||
			strings.Contains(strings.ToLower(stringField(m, "title")), "parashat") {
			return m, true
		}
	}
	return nil, false
}

// ConvertDate converts a Gregorian date to the Hebrew calendar.
func (h *Hebcal) ConvertDate(ctx context.Context, date time.Time) (map[string]any, bool) {
	if date.IsZero() {
		date = h.now()
	}
	return object(h.q.Query(ctx, "converter", source.Params{
		"gy": strconv.Itoa(date.Year()),
		"gm": strconv.Itoa(int(date.Month())),
		"gd": strconv.Itoa(date.Day()),
	}))
}

// Zmanim returns halachic times for a city and date.
func (h *Hebcal) Zmanim(ctx context.Context, location string, date time.Time) (map[string]any, bool) {
	if date.IsZero() {
		date = h.now()
	}
	return object(h.q.Query(ctx, "zmanim", source.Params{
		"geonameid": GeonameID(location),
		"date":      date.Format(time.DateOnly),
	}))
}
