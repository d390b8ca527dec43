// Package textnorm canonicalizes free-form chat and OCR text into a form the
// matching layers can compare. Normalization is idempotent: running it twice
// returns the same string.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9ñ\s]`)
	reMultiSpace = regexp.MustCompile(`\s+`)
)

// stripMarks removes combining marks after NFD decomposition, so "pízza"
// compares equal to "pizza". The ñ is re-composed afterwards: it is a distinct
// letter in menu vocabulary ("pequeña"), not an accent.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lower-cases, strips diacritics, replaces punctuation with spaces,
// collapses whitespace and trims. Total: any input, including empty, yields a
// defined result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	// keep ñ through decomposition by marking it before stripping
	s = strings.ReplaceAll(s, "ñ", "\x00")
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.ReplaceAll(s, "\x00", "ñ")
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// abbreviations expands chat shorthand into full words. Applied on word
// boundaries only, so "tb" inside "tabla" is untouched.
var abbreviations = map[string]string{
	"tb":    "tambien",
	"tmb":   "tambien",
	"q":     "que",
	"xq":    "porque",
	"pq":    "porque",
	"x":     "por",
	"pa":    "para",
	"porfa": "por favor",
	"plis":  "por favor",
	"bn":    "bien",
	"dnd":   "donde",
	"grax":  "gracias",
	"1":     "uno",
	"2":     "dos",
	"3":     "tres",
}

// spellingVariants maps known misspellings of menu vocabulary to the catalog
// spelling.
var spellingVariants = map[string]string{
	"peperoni":   "pepperoni",
	"pepperonni": "pepperoni",
	"peperonni":  "pepperoni",
	"hamburgesa": "hamburguesa",
	"amburguesa": "hamburguesa",
	"picsa":      "pizza",
	"pisa":       "pizza",
	"sandwhich":  "sandwich",
	"sanguche":   "sandwich",
	"bebdia":     "bebida",
	"guaguana":   "guayaba",
}

// ExtremeNormalize applies Normalize and then expands chat abbreviations and
// canonicalizes known spelling variants. Used for the message side of
// matching; catalog names only need Normalize.
func ExtremeNormalize(text string) string {
	s := Normalize(text)
	if s == "" {
		return ""
	}
	words := strings.Split(s, " ")
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
			continue
		}
		if fixed, ok := spellingVariants[w]; ok {
			words[i] = fixed
		}
	}
	return strings.Join(words, " ")
}

// Tokenize splits a canonical form into its ordered tokens, discarding empties.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}
