package cards

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold strips diacritics and then drops anything the card fonts cannot
// be relied on to render. "Sándor" becomes "Sandor" rather than "Sndor".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CleanText reduces text to printable ASCII for card rendering.
func CleanText(text string) string {
	folded, _, err := transform.String(asciiFold, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// WrapText greedily wraps text into lines no wider than maxWidth in the given
// face. A single word wider than maxWidth gets its own line rather than being
// split mid-word.
func WrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current []string

	for _, word := range words {
		candidate := strings.Join(append(current, word), " ")
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
		}
		current = []string{word}
	}

	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
