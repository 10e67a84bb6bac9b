package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/alecthomas/assert/v2"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "0123456789", 10, "0123456789"},
		{"sentence boundary", "Aaaa bbbb cccc dddd eeee. Ffff gggg hhhh", 30, "Aaaa bbbb cccc dddd eeee...."},
		{"word boundary", "The quick brown fox. Jumps over the lazy dog again and again", 30, "The quick brown fox. Jumps..."},
		{"hard cut", "abcdefghijklmnopqrstuvwxyz", 10, "abcdefg..."},
		{"early word boundary", "ab cdefghijklmnopqrstuvwxyz", 10, "ab..."},
		{"leading space only", " abcdefghijklmnopqrstuvwxyz", 10, " abcdef..."},
		{"multibyte", strings.Repeat("ש", 50), 10, strings.Repeat("ש", 7) + "..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.text, tt.limit))
		})
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	text := strings.Repeat("Lorem ipsum dolor sit amet. ", 200)
	for _, limit := range []int{4, 17, 100, 900, 1500, 2000} {
		got := Truncate(text, limit)
		assert.True(t, utf8.RuneCountInString(got) <= limit)
		assert.True(t, strings.HasSuffix(got, "..."))
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  plain   text ", "plain text"},
		{"tags", "<b>Hello</b> &amp; <i>world</i>", "Hello & world"},
		{"line breaks", "line<br>break<br/>again", "line break again"},
		{"paragraphs", "<p>one</p><p>two</p>", "one two"},
		{"entities", "a &lt;tag&gt; &quot;q&quot; &#39;s&#39;", `a <tag> "q" 's'`},
		{"nbsp", "a&nbsp;b", "a b"},
		{"hebrew", "<span>בְּרֵאשִׁית</span> <small>בָּרָא</small>", "בְּרֵאשִׁית בָּרָא"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHTML(tt.in))
		})
	}
}

func TestSummaryHTMLEscapes(t *testing.T) {
	s := Summary{
		Title:  "A & B",
		Body:   "x < y",
		Fields: []Field{{Name: "N", Value: "v"}},
		Link:   "https://example.com/?a=1&b=2",
		Footer: "f",
	}
	want := "<b>A &amp; B</b>\n\nx &lt; y\n\n<b>N:</b> v\n\n" +
		`<a href="https://example.com/?a=1&amp;b=2">https://example.com/?a=1&amp;b=2</a>` +
		"\n\n<i>f</i>"
	assert.Equal(t, want, s.HTML())
}

func TestSummaryText(t *testing.T) {
	s := Summary{Title: "Title", Body: "Body", Fields: []Field{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}}
	assert.Equal(t, "Title\n\nBody\n\nA: 1\nB: 2", s.Text())
}

func TestSummaryBodyIsBounded(t *testing.T) {
	s := Summary{Title: strings.Repeat("t", 500), Body: strings.Repeat("word ", 1000)}
	text := s.Text()
	assert.True(t, utf8.RuneCountInString(text) <= TitleLimit+BodyLimit+2)
}

func TestMessage(t *testing.T) {
	msg := Summary{Title: "Hi", Body: "there"}.Message()
	assert.True(t, msg.HTML)
	assert.Equal(t, "<b>Hi</b>\n\nthere", msg.Text)

	var fields []Field
	for range 20 {
		fields = append(fields, Field{Name: "field", Value: strings.Repeat("&", FieldLimit)})
	}
	long := Summary{Title: "Long", Fields: fields}.Message()
	assert.False(t, long.HTML)
	assert.True(t, utf8.RuneCountInString(long.Text) <= MessageLimit)
}

func TestFallback(t *testing.T) {
	s := Fallback("Title", "")
	assert.Equal(t, DefaultFallback, s.Body)
	assert.Equal(t, "custom", Fallback("", "custom").Body)
	assert.False(t, s.Empty())
	assert.True(t, Summary{}.Empty())
}
