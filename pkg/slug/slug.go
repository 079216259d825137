// Package slug converts human-readable titles into identifier-safe strings.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the words of a slug.
const Separator = "-"

// Func maps a title to a slug.
type Func func(title string) string

// Make lowercases title, folds accented letters to their base form and
// joins runs of letters and digits with Separator. Underscores, hyphens and
// whitespace separate words; "@" becomes the word "at"; any other rune is dropped.
func Make(title string) string {
	folded, _, err := transform.String(fold(), title)
	if err != nil {
		folded = title
	}

	var sb strings.Builder
	pending := false
	word := func(s string) {
		if pending && sb.Len() > 0 {
			sb.WriteString(Separator)
		}
		pending = false
		sb.WriteString(s)
	}

	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word(string(r))
		case r == '@':
			pending = true
			word("at")
			pending = true
		case r == '-' || r == '_' || unicode.IsSpace(r):
			pending = true
		}
	}
	return sb.String()
}

func fold() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
