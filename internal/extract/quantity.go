// Package extract pulls quantities, size variants and with/without modifier
// phrases out of the text window around a matched product mention. Every
// function is total: nothing here returns an error or panics on odd input.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// window is the number of characters inspected on each side of a match span.
const window = 70

// quantityPattern pairs a compiled regex with the capture group holding the
// digits. Ordered: first pattern with any hit wins, so new locales and
// formats are additive table entries, not new code paths.
type quantityPattern struct {
	re    *regexp.Regexp
	group int
}

var quantityPatterns = []quantityPattern{
	// digit with multiplier: "2x", "x2", "2 x"
	{regexp.MustCompile(`\b(\d{1,3})\s?x\b`), 1},
	{regexp.MustCompile(`\bx\s?(\d{1,3})\b`), 1},
	// digit with unit word: "2 unidades", "3 porciones", "2 pcs"
	{regexp.MustCompile(`\b(\d{1,3})\s+(?:unidades?|porciones?|piezas?|pcs?|uds?)\b`), 1},
	// bare digit adjacent to the mention: "2 pizzas"
	{regexp.MustCompile(`\b(\d{1,3})\b`), 1},
}

// numberWords covers Spanish and English count words up to a dozen; beyond
// that customers type digits.
var numberWords = map[string]int{
	"un": 1, "una": 1, "uno": 1, "one": 1,
	"dos": 2, "two": 2,
	"tres": 3, "three": 3,
	"cuatro": 4, "four": 4,
	"cinco": 5, "five": 5,
	"seis": 6, "six": 6,
	"siete": 7, "seven": 7,
	"ocho": 8, "eight": 8,
	"nueve": 9, "nine": 9,
	"diez": 10, "ten": 10,
	"once": 11, "eleven": 11,
	"doce": 12, "twelve": 12,
	"media docena": 6, "docena": 12, "dozen": 12,
}

var numberWordRe = buildNumberWordRe()

func buildNumberWordRe() *regexp.Regexp {
	words := make([]string, 0, len(numberWords))
	for w := range numberWords {
		words = append(words, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`\b(` + strings.Join(words, "|") + `)\b`)
}

// Quantity inspects the window around [spanStart, spanEnd) for a count, in
// priority order: digit-with-multiplier, digit-with-unit, bare digit, then
// number words. When a pattern hits more than once in the window, the hit
// nearest the span wins — "2 pizzas y 1 coca" must give the coca a 1, not
// the pizza's 2. Returns (0, false) when nothing parses; the caller defaults
// to 1.
func Quantity(text string, spanStart, spanEnd int) (int, bool) {
	win, winStart := sliceWindow(text, spanStart, spanEnd)
	if win == "" {
		return 0, false
	}
	relStart := spanStart - winStart
	relEnd := spanEnd - winStart

	for _, qp := range quantityPatterns {
		locs := qp.re.FindAllStringSubmatchIndex(win, -1)
		if locs == nil {
			continue
		}
		best, bestDist := "", -1
		for _, loc := range locs {
			gStart, gEnd := loc[2*qp.group], loc[2*qp.group+1]
			d := spanDistance(gStart, gEnd, relStart, relEnd)
			if bestDist == -1 || d < bestDist {
				best, bestDist = win[gStart:gEnd], d
			}
		}
		if n, err := strconv.Atoi(best); err == nil && n > 0 {
			return n, true
		}
	}

	locs := numberWordRe.FindAllStringIndex(win, -1)
	best, bestDist := "", -1
	for _, loc := range locs {
		d := spanDistance(loc[0], loc[1], relStart, relEnd)
		if bestDist == -1 || d < bestDist {
			best, bestDist = win[loc[0]:loc[1]], d
		}
	}
	if n, ok := numberWords[best]; ok {
		return n, true
	}
	return 0, false
}

// spanDistance is the gap between a candidate match and the product span;
// matches preceding the span are slightly preferred over trailing ones since
// quantities usually come first in both Spanish and English.
func spanDistance(start, end, spanStart, spanEnd int) int {
	switch {
	case end <= spanStart:
		return spanStart - end
	case start >= spanEnd:
		return (start - spanEnd) + 1
	default:
		return 0
	}
}

// sliceWindow returns the text surrounding the span and the offset the slice
// begins at, clamped to the string.
func sliceWindow(text string, spanStart, spanEnd int) (string, int) {
	if text == "" || spanStart > len(text) || spanEnd < 0 || spanStart > spanEnd {
		return "", 0
	}
	start := spanStart - window
	if start < 0 {
		start = 0
	}
	end := spanEnd + window
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return "", 0
	}
	return text[start:end], start
}
