// Package normalize turns raw upstream bodies into a uniform Result: either
// the parsed JSON value or a small set of fields scraped from HTML.
package normalize

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const jsonLDType = "application/ld+json"

// ExtractedFields holds what could be recovered from a non-JSON body.
// Every field is optional.
type ExtractedFields struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	StructuredData any    `json:"structured_data,omitempty"`
	Content        string `json:"content,omitempty"`
}

// Empty reports whether nothing was extracted.
func (f *ExtractedFields) Empty() bool {
	return f == nil || (f.Title == "" && f.Description == "" && f.StructuredData == nil && f.Content == "")
}

// Result is either a JSON value or an ExtractedFields record, never both.
type Result struct {
	JSON   any              `json:"json,omitempty"`
	Fields *ExtractedFields `json:"fields,omitempty"`
}

// IsJSON reports whether the result carries a parsed JSON value.
func (r *Result) IsJSON() bool {
	return r != nil && r.JSON != nil
}

// Object returns the JSON value as an object.
func (r *Result) Object() (map[string]any, bool) {
	if r == nil {
		return nil, false
	}
	obj, ok := r.JSON.(map[string]any)
	return obj, ok
}

// Array returns the JSON value as an array.
func (r *Result) Array() ([]any, bool) {
	if r == nil {
		return nil, false
	}
	arr, ok := r.JSON.([]any)
	return arr, ok
}

// Empty reports whether the result carries no usable data.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	switch v := r.JSON.(type) {
	case nil:
		return r.Fields.Empty()
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

type options struct {
	sniffJSON    bool
	pageURL      *url.URL
	excerptLimit int
}

// Option tunes a single Normalize call.
type Option func(*options)

// WithJSONSniffing parses bodies that look like JSON even when the
// declared content type does not say so (raw file hosts serve text/plain).
func WithJSONSniffing() Option {
	return func(o *options) {
		o.sniffJSON = true
	}
}

// WithReadableContent adds a readability excerpt of at most limit runes
// to HTML results. pageURL resolves relative links inside the page.
func WithReadableContent(pageURL *url.URL, limit int) Option {
	return func(o *options) {
		o.pageURL = pageURL
		o.excerptLimit = limit
	}
}

// IsJSONContentType reports whether a Content-Type header selects the JSON path.
func IsJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// Normalize shapes body according to contentType. It never fails: malformed
// input yields a Result whose Fields are all absent.
func Normalize(body []byte, contentType string, opts ...Option) *Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if IsJSONContentType(contentType) {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			slog.Debug("Malformed JSON body", "content_type", contentType, "error", err)
			return &Result{Fields: &ExtractedFields{}}
		}
		return &Result{JSON: v}
	}

	if o.sniffJSON {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
			var v any
			if err := json.Unmarshal(trimmed, &v); err == nil {
				return &Result{JSON: v}
			}
		}
		if !looksLikeHTML(trimmed) {
			return &Result{Fields: &ExtractedFields{Content: string(trimmed)}}
		}
	}

	fields := ExtractHTML(body)
	if o.pageURL != nil && o.excerptLimit > 0 {
		fields.Content = readableExcerpt(body, o.pageURL, o.excerptLimit)
	}
	return &Result{Fields: fields}
}

// ExtractHTML pulls the first valid JSON-LD block, the document title and
// the meta description out of an HTML page.
func ExtractHTML(body []byte) *ExtractedFields {
	fields := &ExtractedFields{}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Debug("Failed to parse HTML body", "error", err)
		return fields
	}

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), jsonLDType) {
			return true
		}
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return true
		}
		fields.StructuredData = v
		return false
	})

	fields.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, ok := s.Attr("content")
		if !ok {
			return true
		}
		fields.Description = strings.TrimSpace(content)
		return false
	})

	return fields
}

func readableExcerpt(body []byte, pageURL *url.URL, limit int) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		slog.Debug("Readability extraction failed", "url", pageURL.String(), "error", err)
		return ""
	}
	text := strings.Join(strings.Fields(article.TextContent), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}

func looksLikeHTML(body []byte) bool {
	if len(body) == 0 || body[0] != '<' {
		return false
	}
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype") ||
		strings.Contains(head, "<head") || strings.Contains(head, "<title")
}
