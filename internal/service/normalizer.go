package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize produces the comparison key for free text: lower-cased, accents
// removed, whitespace runs collapsed to one space and trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Lower first: some upper-case runes lower into a base plus combining mark.
	folded := strings.ToLower(text)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, folded); err == nil {
		folded = stripped
	}
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeEmail returns the exact-match key for an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameTokens splits a name into normalized words, dropping stop words.
// When every word is a stop word the unfiltered words are returned.
func NameTokens(name string, stopWords map[string]bool) []string {
	words := strings.FieldsFunc(Normalize(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	filtered := make([]string, 0, len(words))
	for _, w := range words {
		if !stopWords[w] {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return words
	}
	return filtered
}

// HandleNormalizer cleans messaging handles.
type HandleNormalizer struct {
	// Tokens are answers that mean "no handle", compared lower-cased.
	Tokens map[string]bool
	Marker string
}

// NewHandleNormalizer builds a normalizer from the configured no-handle tokens
func NewHandleNormalizer(marker string, tokens []string) HandleNormalizer {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[strings.ToLower(strings.TrimSpace(tok))] = true
	}
	if marker == "" {
		marker = "@"
	}
	return HandleNormalizer{Tokens: set, Marker: marker}
}

// Normalize maps no-handle answers to "", strips whitespace and ensures the
// leading marker. Applying it twice changes nothing.
func (h HandleNormalizer) Normalize(handle string) string {
	value := strings.TrimSpace(handle)
	if value == "" || h.Tokens[strings.ToLower(value)] {
		return ""
	}

	value = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)

	if !strings.HasPrefix(value, h.Marker) {
		value = h.Marker + value
	}
	return value
}
