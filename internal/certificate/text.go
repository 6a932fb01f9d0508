package certificate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Ellipsis is appended to width-constrained text that had to be trimmed.
const Ellipsis = "..."

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// UpperTitle uppercases a headline.
func UpperTitle(s string) string {
	return upper.String(s)
}

// CapitalizeWords uppercases the first letter of every space-delimited word
// and lowercases the rest, collapsing runs of whitespace.
func CapitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// FitWidth trims runes from the end of text and appends an ellipsis until
// the measured width is within max. A text that cannot fit even as a single
// rune plus ellipsis collapses to "".
func FitWidth(text string, max float64, measure func(string) float64) string {
	if measure(text) <= max {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && measure(string(runes)+Ellipsis) > max {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		return ""
	}
	return string(runes) + Ellipsis
}

// WrapWords greedily packs words into lines narrower than max. A single word
// wider than max occupies a line of its own.
func WrapWords(text string, max float64, measure func(string) float64) []string {
	var lines []string
	var current []string
	for _, word := range strings.Fields(text) {
		candidate := strings.Join(append(current, word), " ")
		if len(current) == 0 || measure(candidate) < max {
			current = append(current, word)
			continue
		}
		lines = append(lines, strings.Join(current, " "))
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// LetterSpace puts a single space between every character.
func LetterSpace(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i, r := range runes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
