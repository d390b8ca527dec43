package extract

import (
	"regexp"
	"sort"
	"strings"
)

// sizeKeywords maps every accepted spelling of a size to its canonical
// variant key, which is also the key used in catalog variant price tables.
var sizeKeywords = map[string]string{
	"pequeña":      "pequena",
	"pequena":      "pequena",
	"chica":        "pequena",
	"small":        "pequena",
	"personal":     "pequena",
	"mediana":      "mediana",
	"mediano":      "mediana",
	"medium":       "mediana",
	"grande":       "grande",
	"large":        "grande",
	"familiar":     "familiar",
	"xl":           "familiar",
	"extra grande": "familiar",
}

var sizeKeywordRe = buildSizeKeywordRe()

func buildSizeKeywordRe() *regexp.Regexp {
	words := make([]string, 0, len(sizeKeywords))
	for w := range sizeKeywords {
		words = append(words, regexp.QuoteMeta(w))
	}
	// longer alternatives first so "extra grande" beats "grande"
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	// trailing s? tolerates plurals: "medianas" -> "mediana"
	return regexp.MustCompile(`\b(` + strings.Join(words, "|") + `)s?\b`)
}

// Variant looks for a size keyword in the window around the span. First match
// wins. Returns the canonical variant key, or "" when none is present.
func Variant(text string, spanStart, spanEnd int) string {
	win, _ := sliceWindow(text, spanStart, spanEnd)
	if win == "" {
		return ""
	}
	if m := sizeKeywordRe.FindStringSubmatch(win); m != nil {
		return sizeKeywords[m[1]]
	}
	return ""
}
