package render

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/shamash/internal/catalog"
	"github.com/lepinkainen/shamash/internal/normalize"
	"github.com/lepinkainen/shamash/internal/sources"
)

const (
	passageLimit = 900
	listLimit    = 5
	snippetLimit = 200

	answerLimit  = 800

	truncatedNote = "Text has been shortened for readability. Use a specific verse reference for complete passages."
	dcPrefix      = "http://purl.org/dc/elements/1.1/"
)

// Passage renders a Sefaria text payload with Hebrew and English sections.
func Passage(data map[string]any, ok bool) Summary {
	if !ok || data == nil {
		return Fallback("Text not found", "Could not find that reference. Try something like Genesis 1:1.")
	}
	ref := firstString(data, "ref", "title")
	if ref == "" {
		ref = "Unknown Text"
	}

	var sections []string
	if he := CleanHTML(joinText(data["he"])); he != "" {
		sections = append(sections, "Hebrew:\n"+Truncate(he, passageLimit))
	}
	if en := CleanHTML(joinText(data["text"])); en != "" {
		sections = append(sections, "English:\n"+Truncate(en, passageLimit))
	}
	if len(sections) == 0 {
		sections = append(sections, "No text content available.")
	}
	if truncated, _ := data[sources.TruncatedKey].(bool); truncated {
		sections = append(sections, truncatedNote)
	}

	s := Summary{Title: ref, Body: strings.Join(sections, "\n\n"), Footer: "Powered by Sefaria"}
	if cats := stringList(data["categories"]); len(cats) > 0 {
		s.Fields = append(s.Fields, Field{Name: "Categories", Value: strings.Join(cats, " > ")})
	}
	return s
}

// SearchHits renders full-text search matches.
func SearchHits(query string, hits []sources.SearchHit) Summary {
	title := fmt.Sprintf("Search results for %q", query)
	if len(hits) == 0 {
		return Fallback(title, "")
	}
	s := Summary{Title: title}
	for i, hit := range hits {
		if i == listLimit {
			break
		}
		name := hit.Ref
		if name == "" {
			name = hit.Title
		}
		s.Fields = append(s.Fields, Field{
			Name:  fmt.Sprintf("%d. %s", i+1, name),
			Value: Truncate(CleanHTML(hit.Text), snippetLimit),
		})
	}
	return s
}

// Page renders a scraped page or a JSON object with title/description keys.
// fallback is used as the body when nothing readable was found.
func Page(title string, res *normalize.Result, ok bool, fallback string) Summary {
	if !ok || res.Empty() {
		return Fallback(title, fallback)
	}

	s := Summary{Title: title}
	if res.Fields != nil {
		f := res.Fields
		if f.Title != "" {
			s.Fields = append(s.Fields, Field{Name: "Page", Value: f.Title})
		}
		body := f.Content
		if body == "" {
			body = f.Description
		}
		if body == "" {
			if sd, isObj := f.StructuredData.(map[string]any); isObj {
				body = firstString(sd, "description", "headline", "name")
			}
		}
		s.Body = CleanHTML(body)
	} else if obj, isObj := res.Object(); isObj {
		if t := firstString(obj, "title", "name"); t != "" {
			s.Fields = append(s.Fields, Field{Name: "Page", Value: t})
		}
		s.Body = CleanHTML(firstString(obj, "content", "text", "description"))
	}

	if s.Body == "" {
		s.Body = fallback
	}
	if s.Body == "" && len(s.Fields) == 0 {
		return Fallback(title, fallback)
	}
	return s
}

// Records renders archive search records.
func Records(title string, records []any, fallback string) Summary {
	if len(records) == 0 {
		return Fallback(title, fallback)
	}
	s := Summary{Title: title, Footer: "National Library of Israel"}
	for i, r := range records {
		if len(s.Fields) == listLimit {
			break
		}
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		name := recordValue(m, "title")
		if name == "" {
			name = fmt.Sprintf("Item %d", i+1)
		}
		desc := recordValue(m, "description")
		if creator := recordValue(m, "creator"); creator != "" {
			desc = strings.TrimSpace(creator + ". " + desc)
		}
		if desc == "" {
			desc = "-"
		}
		s.Fields = append(s.Fields, Field{Name: fmt.Sprintf("%d. %s", len(s.Fields)+1, name), Value: Truncate(desc, snippetLimit)})
	}
	if len(s.Fields) == 0 {
		return Fallback(title, fallback)
	}
	return s
}

// Shabbat renders Hebcal candle-lighting items.
func Shabbat(data map[string]any, ok bool) Summary {
	const title = "Shabbat times"
	if !ok {
		return Fallback(title, "Shabbat times are unavailable right now.")
	}
	s := Summary{Title: title}
	if loc, isObj := data["location"].(map[string]any); isObj {
		if city := firstString(loc, "title", "city"); city != "" {
			s.Title = "Shabbat times for " + city
		}
	}
	items, _ := data["items"].([]any)
	for _, it := range items {
		m, isObj := it.(map[string]any)
		if !isObj {
			continue
		}
		switch stringValue(m["category"]) {
		case "candles", "havdalah", "parashat":
			s.Fields = append(s.Fields, Field{Name: stringValue(m["title"]), Value: stringValue(m["date"])})
		}
	}
	if len(s.Fields) == 0 {
		return Fallback(s.Title, "No Shabbat times found for that location.")
	}
	return s
}

// Holidays renders calendar items as name/date fields.
func Holidays(year int, items []any, ok bool) Summary {
	title := "Jewish holidays"
	if year > 0 {
		title += " " + strconv.Itoa(year)
	}
	if !ok || len(items) == 0 {
		return Fallback(title, "Check your local Jewish calendar for upcoming holidays.")
	}
	s := Summary{Title: title}
	for _, it := range items {
		if len(s.Fields) == 8 {
			break
		}
		m, isObj := it.(map[string]any)
		if !isObj {
			continue
		}
		date := stringValue(m["date"])
		if date == "" {
			date = "Date TBA"
		}
		s.Fields = append(s.Fields, Field{Name: stringValue(m["title"]), Value: date})
	}
	return s
}

// TorahReading renders the weekly portion item.
func TorahReading(item map[string]any, ok bool) Summary {
	const title = "This week's Torah reading"
	if !ok {
		return Fallback(title, "Continue your daily Torah study.")
	}
	s := Summary{Title: title, Fields: []Field{{Name: "Weekly Portion", Value: stringValue(item["title"])}}}
	if heb := stringValue(item["hebrew"]); heb != "" {
		s.Fields = append(s.Fields, Field{Name: "Hebrew", Value: heb})
	}
	if date := stringValue(item["date"]); date != "" {
		s.Fields = append(s.Fields, Field{Name: "Date", Value: date})
	}
	return s
}

// HebrewDate renders a Gregorian to Hebrew conversion.
func HebrewDate(today string, data map[string]any, ok bool) Summary {
	s := Summary{Title: "Jewish calendar", Fields: []Field{{Name: "Today", Value: today}}}
	heb := "Hebrew date unavailable"
	if ok {
		if v := stringValue(data["hebrew"]); v != "" {
			heb = v
		}
	}
	s.Fields = append(s.Fields, Field{Name: "Hebrew Date", Value: heb})
	if events := stringList(data["events"]); len(events) > 0 {
		s.Fields = append(s.Fields, Field{Name: "Events", Value: strings.Join(events, ", ")})
	}
	return s
}

// Categories renders a list of category names.
func Categories(title string, names []string) Summary {
	if len(names) == 0 {
		return Fallback(title, "Popular categories: Torah, Talmud, Mishnah, Halakhah, Kabbalah, Liturgy, Philosophy")
	}
	const shown = 15
	lines := make([]string, 0, shown)
	for i, n := range names {
		if i == shown {
			break
		}
		lines = append(lines, "• "+n)
	}
	s := Summary{Title: title, Body: strings.Join(lines, "\n")}
	if len(names) > shown {
		s.Footer = fmt.Sprintf("Showing first %d of %d categories", shown, len(names))
	}
	return s
}

// Books renders catalog entries.
func Books(title string, entries []catalog.Entry) Summary {
	if len(entries) == 0 {
		return Fallback(title, "No books found. Try different search terms.")
	}
	s := Summary{Title: title, Footer: "Dicta library"}
	for i, e := range entries {
		if i == listLimit {
			break
		}
		s.Fields = append(s.Fields, Field{Name: fmt.Sprintf("%d. %s", i+1, e.Title()), Value: bookDetails(e)})
	}
	return s
}

// Book renders a single catalog entry.
func Book(title string, e catalog.Entry, ok bool) Summary {
	if !ok {
		return Fallback(title, "The book library is unavailable right now.")
	}
	return Summary{Title: title, Body: e.Title(), Fields: []Field{{Name: "Details", Value: bookDetails(e)}}}
}

func bookDetails(e catalog.Entry) string {
	author := e.AuthorName()
	if author == "" {
		author = "Unknown"
	}
	parts := []string{"By: " + author}
	if e.CategoryEnglish != "" {
		parts = append(parts, e.CategoryEnglish)
	}
	if e.PrintYear != 0 {
		printed := strconv.Itoa(e.PrintYear)
		if e.PrintLocationEnglish != "" {
			printed = e.PrintLocationEnglish + " " + printed
		}
		parts = append(parts, "printed "+printed)
	}
	return strings.Join(parts, ", ")
}

// BookCategories renders catalog categories with counts.
func BookCategories(cats []catalog.CategoryCount) Summary {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, fmt.Sprintf("%s (%d)", c.English, c.Count))
	}
	return Categories("Library categories", names)
}

// Stats renders catalog statistics.
func Stats(st catalog.Statistics) Summary {
	const title = "Library statistics"
	if st.TotalBooks == 0 {
		return Fallback(title, "The book library is unavailable right now.")
	}
	s := Summary{Title: title, Fields: []Field{
		{Name: "Books", Value: strconv.Itoa(st.TotalBooks)},
		{Name: "Categories", Value: strconv.Itoa(st.TotalCategories)},
		{Name: "Authors", Value: strconv.Itoa(st.TotalAuthors)},
		{Name: "Print locations", Value: strconv.Itoa(st.TotalLocations)},
	}}
	if st.EarliestYear != 0 {
		s.Fields = append(s.Fields, Field{Name: "Years", Value: fmt.Sprintf("%d-%d", st.EarliestYear, st.LatestYear)})
	}
	return s
}

// Gematria renders a local gematria computation.
func Gematria(text string, value int) Summary {
	return Summary{Title: "Gematria", Fields: []Field{
		{Name: "Text", Value: text},
		{Name: "Standard Value", Value: strconv.Itoa(value)},
	}}
}

// Calculation renders a calculator answer. question is shown when set.
func Calculation(title, question string, res *normalize.Result, ok bool, fallback string) Summary {
	if !ok || res.Empty() {
		return Fallback(title, fallback)
	}
	var answer string
	if res.IsJSON() {
		answer = answerText(res.JSON)
	} else if res.Fields != nil {
		answer = res.Fields.Content
		if answer == "" {
			answer = res.Fields.Description
		}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Fallback(title, fallback)
	}

	s := Summary{Title: title, Body: Truncate(answer, answerLimit), Footer: "Powered by TorahCalc"}
	if question != "" {
		s.Fields = []Field{{Name: "Question", Value: question}}
	}
	return s
}

// answerText flattens a calculator response into lines, preferring a
// display string when the response has one.
func answerText(v any) string {
	switch t := v.(type) {
	case string:
		return CleanHTML(t)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		lines := make([]string, 0, len(t))
		for _, el := range t {
			if s := answerText(el); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		if inner, ok := t["data"]; ok {
			return answerText(inner)
		}
		if s := firstString(t, "display", "answer", "result", "text", "content"); s != "" {
			return CleanHTML(s)
		}
		var lines []string
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if k == "success" {
				continue
			}
			if s := answerText(t[k]); s != "" {
				lines = append(lines, k+": "+s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return stringValue(v)
	}
}

var zmanimOrder = []struct{ key, label string }{
	{"alotHaShachar", "Dawn"},
	{"misheyakir", "Misheyakir"},
	{"sunrise", "Sunrise"},
	{"sofZmanShma", "Latest Shema"},
	{"sofZmanTfilla", "Latest Shacharit"},
	{"chatzot", "Midday"},
	{"minchaGedola", "Earliest Mincha"},
	{"plagHaMincha", "Plag HaMincha"},
	{"sunset", "Sunset"},
	{"tzeit7083deg", "Nightfall"},
}

// Zmanim renders Hebcal halachic times in day order.
func Zmanim(data map[string]any, ok bool) Summary {
	title := "Zmanim"
	if !ok {
		return Fallback(title, "Halachic times are unavailable right now.")
	}
	if loc, isObj := data["location"].(map[string]any); isObj {
		if city := firstString(loc, "title", "city"); city != "" {
			title = "Zmanim for " + city
		}
	}
	s := Summary{Title: title, Footer: stringValue(data["date"])}
	times, _ := data["times"].(map[string]any)
	for _, z := range zmanimOrder {
		if v := stringValue(times[z.key]); v != "" {
			s.Fields = append(s.Fields, Field{Name: z.label, Value: clockTime(v)})
		}
	}
	if len(s.Fields) == 0 {
		return Fallback(title, "No halachic times found for that location.")
	}
	return s
}

// clockTime shortens an RFC 3339 timestamp to its local wall clock.
func clockTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

func joinText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			if s := joinText(el); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, el := range list {
		if s := stringValue(el); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// recordValue reads a plain key or its Dublin Core form, which the archive
// returns as a list of {"@value": ...} objects.
func recordValue(m map[string]any, key string) string {
	if s := stringValue(m[key]); s != "" {
		return s
	}
	list, _ := m[dcPrefix+key].([]any)
	for _, el := range list {
		switch t := el.(type) {
		case map[string]any:
			if s := stringValue(t["@value"]); s != "" {
				return s
			}
		case string:
			if t != "" {
				return t
			}
		}
	}
	return ""
}
