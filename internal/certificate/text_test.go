package certificate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func runeWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

func TestUpperTitle(t *testing.T) {
	assert.Equal(t, "CERTIFICATE OF COMPLETION", UpperTitle("Certificate of completion"))
	assert.Equal(t, "ÉLAN VITAL", UpperTitle("élan vital"))
}

func TestCapitalizeWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sachin kumar", "Sachin Kumar"},
		{"SACHIN KUMAR", "Sachin Kumar"},
		{"  sachin\t  kumar ", "Sachin Kumar"},
		{"émile zola", "Émile Zola"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CapitalizeWords(tt.in), tt.in)
	}
}

func TestFitWidth(t *testing.T) {
	assert.Equal(t, "Welcome!", FitWidth("Welcome!", 8, runeWidth))
	assert.Equal(t, "Welc...", FitWidth("Welcome aboard", 7, runeWidth))
	assert.Equal(t, "", FitWidth("Welcome", 3, runeWidth))
	assert.Equal(t, "", FitWidth("", 10, runeWidth))

	got := FitWidth(strings.Repeat("x", 100), 40, runeWidth)
	assert.LessOrEqual(t, runeWidth(got), 40.0)
	assert.True(t, strings.HasSuffix(got, Ellipsis))
}

func TestWrapWords(t *testing.T) {
	lines := WrapWords("the quick brown fox jumps over the lazy dog", 16, runeWidth)

	assert.Equal(t, []string{"the quick brown", "fox jumps over", "the lazy dog"}, lines)
	for _, l := range lines {
		assert.Less(t, runeWidth(l), 16.0)
	}
}

func TestWrapWordsLongWordHasOwnLine(t *testing.T) {
	lines := WrapWords("a supercalifragilistic b", 10, runeWidth)

	assert.Equal(t, []string{"a", "supercalifragilistic", "b"}, lines)
	for _, l := range lines {
		assert.NotEmpty(t, l)
	}
}

func TestWrapWordsIsIdempotent(t *testing.T) {
	text := longBody(60) + " " + sampleBody
	first := WrapWords(text, 80, runeWidth)
	second := WrapWords(strings.Join(first, " "), 80, runeWidth)

	assert.Equal(t, first, second)
	assert.Empty(t, WrapWords("   ", 80, runeWidth))
}

func TestLetterSpace(t *testing.T) {
	assert.Equal(t, "A n t o n y", LetterSpace("Antony"))
	assert.Equal(t, "A", LetterSpace("A"))
	assert.Equal(t, "", LetterSpace(""))
	assert.Equal(t, "é t é", LetterSpace("été"))
}
