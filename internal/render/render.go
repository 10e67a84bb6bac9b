// Package render turns source results into bounded chat messages.
package render

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// BodyLimit caps the main text of a summary.
	BodyLimit = 2000
	// TitleLimit caps a summary title.
	TitleLimit = 200
	// FieldLimit caps each field value.
	FieldLimit = 300
	// MessageLimit stays under Telegram's 4096 character message limit.
	MessageLimit = 4000

	ellipsis = "..."
)

// DefaultFallback is shown when a source returned nothing.
const DefaultFallback = "No results found. Try different search terms."

// Field is a labelled line below the body.
type Field struct {
	Name  string
	Value string
}

// Summary is the display form of one result.
type Summary struct {
	Title  string
	Body   string
	Fields []Field
	Link   string
	Footer string
}

// Message is ready-to-send chat text.
type Message struct {
	Text string
	HTML bool
}

// Fallback builds a summary that only carries fallback text.
func Fallback(title, text string) Summary {
	if text == "" {
		text = DefaultFallback
	}
	return Summary{Title: title, Body: text}
}

// Empty reports whether the summary has nothing to show.
func (s Summary) Empty() bool {
	return s.Title == "" && s.Body == "" && len(s.Fields) == 0
}

// Text renders the summary as plain text.
func (s Summary) Text() string {
	var parts []string
	if s.Title != "" {
		parts = append(parts, Truncate(s.Title, TitleLimit))
	}
	if s.Body != "" {
		parts = append(parts, Truncate(s.Body, BodyLimit))
	}
	if len(s.Fields) > 0 {
		lines := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			lines = append(lines, f.Name+": "+Truncate(f.Value, FieldLimit))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if s.Link != "" {
		parts = append(parts, s.Link)
	}
	if s.Footer != "" {
		parts = append(parts, s.Footer)
	}
	return strings.Join(parts, "\n\n")
}

// HTML renders the summary in Telegram's HTML dialect.
func (s Summary) HTML() string {
	var parts []string
	if s.Title != "" {
		parts = append(parts, "<b>"+html.EscapeString(Truncate(s.Title, TitleLimit))+"</b>")
	}
	if s.Body != "" {
		parts = append(parts, html.EscapeString(Truncate(s.Body, BodyLimit)))
	}
	if len(s.Fields) > 0 {
		lines := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			lines = append(lines, "<b>"+html.EscapeString(f.Name)+":</b> "+html.EscapeString(Truncate(f.Value, FieldLimit)))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if s.Link != "" {
		link := html.EscapeString(s.Link)
		parts = append(parts, `<a href="`+link+`">`+link+"</a>")
	}
	if s.Footer != "" {
		parts = append(parts, "<i>"+html.EscapeString(s.Footer)+"</i>")
	}
	return strings.Join(parts, "\n\n")
}

// Message picks the HTML rendering when it fits in one chat message and
// falls back to truncated plain text otherwise.
func (s Summary) Message() Message {
	if out := s.HTML(); utf8.RuneCountInString(out) <= MessageLimit {
		return Message{Text: out, HTML: true}
	}
	return Message{Text: Truncate(s.Text(), MessageLimit)}
}

// Truncate shortens text to at most limit characters, ending in "...".
// It prefers a sentence end in the last 30% of the window, then a space in
// the last 20%, and only then cuts mid-word.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= len(ellipsis) {
		return string(runes[:max(limit, 0)])
	}

	window := runes[:limit-len(ellipsis)]
	lastSentence := -1
	lastSpace := -1
	for i, r := range window {
		switch r {
		case '.', '!', '?':
			lastSentence = i
		case ' ':
			lastSpace = i
		}
	}

	switch {
	case float64(lastSentence) > float64(limit)*0.7:
		window = window[:lastSentence+1]
	case float64(lastSpace) > float64(limit)*0.8:
		window = window[:lastSpace]
	case lastSpace > 0:
		// A short cut still beats splitting a word.
		window = window[:lastSpace]
	}
	return string(window) + ellipsis
}

var breakReplacer = strings.NewReplacer("<br", " <br", "</p>", "</p> ", "</div>", "</div> ", "</li>", "</li> ")

// CleanHTML strips markup, decodes entities and collapses whitespace.
func CleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(breakReplacer.Replace(s)))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
