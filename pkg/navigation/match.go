package navigation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"wedding-site/pkg/models"
)

// prefixLen is how many leading runes of a label token must start a section
// word, so that "contact" still finds "contacter".
const prefixLen = 4

// Normalize folds s for fuzzy comparison: diacritics removed, lowercased,
// runs of anything but a-z and 0-9 collapsed to one space.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Tokens splits the normalized form of s on spaces.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// MatchSection reports whether label plausibly names sec.
func MatchSection(label string, sec models.Section) bool {
	tokens := Tokens(label)
	if len(tokens) == 0 {
		return false
	}
	title := Normalize(sec.Title)
	ident := Normalize(sec.Identifier)

	for _, tok := range tokens {
		if strings.Contains(title, tok) || strings.Contains(ident, tok) {
			return true
		}
	}

	words := append(strings.Fields(title), strings.Fields(ident)...)
	for _, tok := range tokens {
		prefix := tok
		if r := []rune(tok); len(r) > prefixLen {
			prefix = string(r[:prefixLen])
		}
		for _, w := range words {
			if strings.HasPrefix(w, prefix) {
				return true
			}
		}
	}
	return false
}

// FindSection returns the first section matching label, or nil.
func FindSection(label string, sections []models.Section) *models.Section {
	for i := range sections {
		if MatchSection(label, sections[i]) {
			return &sections[i]
		}
	}
	return nil
}
