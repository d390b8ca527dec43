package extract

import (
	"regexp"
	"strings"
)

// Extra is one "with/without/add" modifier phrase with the offset of the
// construct in the text it was captured from, so the resolver can bind it to
// the nearest preceding match span.
type Extra struct {
	Phrase string
	Offset int
}

// extrasKeywordRe anchors modifier constructs; the phrase itself is collected
// token by token after the keyword (RE2 has no lookahead to cut it in-pattern).
var extrasKeywordRe = regexp.MustCompile(`\b(con|sin|agregue|agrega|mas|extra)\b`)

// stopWords end a modifier phrase at the next conjunction, courtesy filler or
// clause break: "sin cebolla por favor" carries the modifier "sin cebolla".
var stopWords = map[string]bool{
	"y": true, "e": true, "o": true, "u": true,
	"pero": true, "para": true, "tambien": true, "que": true, "quiero": true,
	"con": true, "sin": true, "agregue": true, "agrega": true, "mas": true, "extra": true,
	"por": true, "favor": true, "gracias": true,
}

// articles end a phrase once it has content ("sin cebolla la pizza" stops
// before "la pizza") but are skipped right after the keyword, so "sin la
// cebolla" still yields "sin cebolla".
var articles = map[string]bool{
	"la": true, "el": true, "los": true, "las": true,
	"un": true, "una": true, "unos": true, "unas": true,
}

// skipFirst marks phrases that start a new clause rather than a modifier:
// "sin embargo quiero..." must not become an extra.
var skipFirst = map[string]bool{
	"embargo": true,
}

// maxPhraseTokens bounds a captured phrase; modifiers are short.
const maxPhraseTokens = 4

// Extras captures every modifier construct in the normalized message, in
// order of appearance. The phrase keeps the leading keyword ("sin cebolla")
// because downstream templates render it verbatim.
func Extras(text string) []Extra {
	if text == "" {
		return nil
	}
	var extras []Extra
	for _, loc := range extrasKeywordRe.FindAllStringIndex(text, -1) {
		keyword := text[loc[0]:loc[1]]
		rest := text[loc[1]:]
		var phrase []string
		for _, tok := range strings.Fields(rest) {
			if articles[tok] {
				if len(phrase) == 0 {
					continue
				}
				break
			}
			if stopWords[tok] || len(phrase) >= maxPhraseTokens {
				break
			}
			if len(phrase) == 0 && skipFirst[tok] {
				break
			}
			phrase = append(phrase, tok)
		}
		if len(phrase) == 0 {
			continue
		}
		extras = append(extras, Extra{
			Phrase: keyword + " " + strings.Join(phrase, " "),
			Offset: loc[0],
		})
	}
	return extras
}
