package team

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics and collapses whitespace so that
// "KIA ", "kia" and "Kia" compare equal. Hangul survives NFC recomposition.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return collapseWhitespace(s)
}

// Aliases maps normalized spellings to a canonical team ID.
type Aliases map[string]string

// Add registers name (and its normalized form) as a spelling of id.
func (a Aliases) Add(name, id string) {
	if k := Normalize(name); k != "" {
		a[k] = id
	}
}

// Lookup resolves a raw name, returning false when no spelling matches.
func (a Aliases) Lookup(name string) (string, bool) {
	id, ok := a[Normalize(name)]
	return id, ok
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // combining accents
			b.WriteRune(r)
		}
	}
	// NFD splits Hangul syllables into jamo; put them back together.
	return norm.NFC.String(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
