package catalog

import "math"

// Entry is one book of the library catalog.
type Entry struct {
	DisplayName          string `json:"displayName"`
	DisplayNameEnglish   string `json:"displayNameEnglish"`
	Author               string `json:"author"`
	AuthorEnglish        string `json:"authorEnglish"`
	Category             string `json:"category"`
	CategoryEnglish      string `json:"categoryEnglish"`
	PrintYear            int    `json:"printYear,omitempty"`
	PrintLocation        string `json:"printLocation,omitempty"`
	PrintLocationEnglish string `json:"printLocationEnglish,omitempty"`
}

// Title prefers the English display name.
func (e Entry) Title() string {
	if e.DisplayNameEnglish != "" {
		return e.DisplayNameEnglish
	}
	return e.DisplayName
}

// AuthorName prefers the English author name.
func (e Entry) AuthorName() string {
	if e.AuthorEnglish != "" {
		return e.AuthorEnglish
	}
	return e.Author
}

// DecodeEntries converts a decoded JSON array into entries. Rows that are
// not objects are skipped; fields of the wrong type are left empty.
func DecodeEntries(v any) []Entry {
	rows, ok := v.([]any)
	if !ok {
		return nil
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			DisplayName:          str(m, "displayName"),
			DisplayNameEnglish:   str(m, "displayNameEnglish"),
			Author:               str(m, "author"),
			AuthorEnglish:        str(m, "authorEnglish"),
			Category:             str(m, "category"),
			CategoryEnglish:      str(m, "categoryEnglish"),
			PrintYear:            year(m["printYear"]),
			PrintLocation:        str(m, "printLocation"),
			PrintLocationEnglish: str(m, "printLocationEnglish"),
		})
	}
	return entries
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// year accepts only integral JSON numbers; anything else counts as absent.
func year(v any) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0
	}
	return int(f)
}
