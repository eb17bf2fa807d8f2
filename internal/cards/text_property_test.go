package cards

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TestWrapTextProperties tests wrapping invariants over generated titles
func TestWrapTextProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	face := basicfont.Face7x13

	wordGen := gen.RegexMatch(`^[a-z]{1,8}$`)

	// Property: no words are lost or reordered by wrapping
	properties.Property("wrapping preserves words", prop.ForAll(
		func(words []string) bool {
			text := strings.Join(words, " ")
			lines := WrapText(face, text, 80)
			joined := strings.Fields(strings.Join(lines, " "))
			expected := strings.Fields(text)
			if len(joined) != len(expected) {
				return false
			}
			for i := range joined {
				if joined[i] != expected[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, wordGen),
	))

	// Property: multi-word lines never exceed the wrap width
	properties.Property("lines fit width", prop.ForAll(
		func(words []string) bool {
			lines := WrapText(face, strings.Join(words, " "), 80)
			for _, line := range lines {
				if len(strings.Fields(line)) > 1 &&
					font.MeasureString(face, line).Ceil() > 80 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, wordGen),
	))

	// Property: cleaning is idempotent
	properties.Property("clean text idempotent", prop.ForAll(
		func(text string) bool {
			once := CleanText(text)
			return CleanText(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
