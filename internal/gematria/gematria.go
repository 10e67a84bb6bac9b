// Package gematria computes Hebrew letter values locally.
package gematria

var values = map[rune]int{
	'א': 1, 'ב': 2, 'ג': 3, 'ד': 4, 'ה': 5, 'ו': 6, 'ז': 7, 'ח': 8, 'ט': 9,
	'י': 10, 'כ': 20, 'ל': 30, 'מ': 40, 'נ': 50, 'ס': 60, 'ע': 70, 'פ': 80, 'צ': 90,
	'ק': 100, 'ר': 200, 'ש': 300, 'ת': 400,
	'ך': 20, 'ם': 40, 'ן': 50, 'ף': 80, 'ץ': 90,
}

// finals holds the extended values some traditions give final letters.
var finals = map[rune]int{
	'ך': 500, 'ם': 600, 'ן': 700, 'ף': 800, 'ץ': 900,
}

// Value returns the standard value of text. Final letters count like their
// regular forms and every non-letter, including vowel points, counts zero.
func Value(text string) int {
	total := 0
	for _, r := range text {
		total += values[r]
	}
	return total
}

// GadolValue returns the value with final letters counted 500 to 900.
func GadolValue(text string) int {
	total := 0
	for _, r := range text {
		if v, ok := finals[r]; ok {
			total += v
			continue
		}
		total += values[r]
	}
	return total
}

// HasHebrew reports whether text contains any Hebrew letter.
func HasHebrew(text string) bool {
	for _, r := range text {
		if _, ok := values[r]; ok {
			return true
		}
	}
	return false
}
