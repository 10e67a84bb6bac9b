package sources

import (
	"context"
	"strconv"
	"time"

	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/source"
)

// TorahCalc wraps the TorahCalc calculation API.
type TorahCalc struct {
	q Querier
}

// NewTorahCalc creates a TorahCalc wrapper.
func NewTorahCalc(q Querier) *TorahCalc {
	return &TorahCalc{q: q}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// Calculate runs a natural-language query ("Gematria of שלום").
func (t *TorahCalc) Calculate(ctx context.Context, query string) (*normalize.Result, bool) {
	return t.q.Query(ctx, "input", source.Params{"query": query})
}

// ConvertUnits converts an amount between biblical and modern units.
func (t *TorahCalc) ConvertUnits(ctx context.Context, unitType, from, to string, amount float64, opinion string) (*normalize.Result, bool) {
	params := source.Params{
		"type":   unitType,
		"from":   from,
		"to":     to,
		"amount": formatAmount(amount),
	}
	if opinion != "" {
		params["opinion"] = opinion
	}
	return t.q.Query(ctx, "unit_converter", params)
}

// UnitCharts converts an amount to every compatible unit.
func (t *TorahCalc) UnitCharts(ctx context.Context, unitType, from string, amount float64, opinion string) (*normalize.Result, bool) {
	params := source.Params{
		"type":   unitType,
		"from":   from,
		"amount": formatAmount(amount),
	}
	if opinion != "" {
		params["opinion"] = opinion
	}
	return t.q.Query(ctx, "unit_charts", params)
}

// DailyLearning returns the learning schedule of a date, or today when zero.
func (t *TorahCalc) DailyLearning(ctx context.Context, date time.Time) (*normalize.Result, bool) {
	var params source.Params
	if !date.IsZero() {
		params = source.Params{"date": date.Format(time.DateOnly)}
	}
	return t.q.Query(ctx, "daily_learning", params)
}

// GregorianToHebrew converts a date. A zero date lets the server pick today.
func (t *TorahCalc) GregorianToHebrew(ctx context.Context, date time.Time, afterSunset bool) (*normalize.Result, bool) {
	params := source.Params{}
	if !date.IsZero() {
		params["year"] = strconv.Itoa(date.Year())
		params["month"] = strconv.Itoa(int(date.Month()))
		params["day"] = strconv.Itoa(date.Day())
	}
	if afterSunset {
		params["afterSunset"] = "true"
	}
	return t.q.Query(ctx, "greg_to_heb", params)
}

// HebrewToGregorian converts a Hebrew date such as (5785, "Nisan", 15).
func (t *TorahCalc) HebrewToGregorian(ctx context.Context, year int, month string, day int) (*normalize.Result, bool) {
	return t.q.Query(ctx, "heb_to_greg", source.Params{
		"year":  strconv.Itoa(year),
		"month": month,
		"day":   strconv.Itoa(day),
	})
}

// BirkatHachama returns the next blessing of the sun after year (0 = now).
func (t *TorahCalc) BirkatHachama(ctx context.Context, year int) (*normalize.Result, bool) {
	var params source.Params
	if year != 0 {
		params = source.Params{"year": strconv.Itoa(year)}
	}
	return t.q.Query(ctx, "hachama", params)
}

// Gematria asks the calculator for the gematria of text.
func (t *TorahCalc) Gematria(ctx context.Context, text string) (*normalize.Result, bool) {
	return t.Calculate(ctx, "Gematria of "+text)
}

// Zmanim asks the calculator for halachic times.
func (t *TorahCalc) Zmanim(ctx context.Context, location, date string) (*normalize.Result, bool) {
	if location == "" {
		location = "New York"
	}
	query := "Zmanim for " + location
	if date != "" {
		query += " on " + date
	}
	return t.Calculate(ctx, query)
}
