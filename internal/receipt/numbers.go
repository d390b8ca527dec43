package receipt

import (
	"regexp"
	"strings"

	"github.com/pedidobot/ordercore/constants"
)

// DetectedNumber is a long digit sequence that looks like a transfer
// reference rather than an amount.
type DetectedNumber struct {
	Digits string               `json:"digits"`
	Kind   constants.NumberKind `json:"kind"`
	Offset int                  `json:"offset"`
}

// digit runs may be OCR-split by spaces or dashes: "0102 1234 5678".
var digitRunRe = regexp.MustCompile(`\b\d[\d\s\-]{4,30}\d\b`)

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// Operation references on local payment apps run 6-13 digits; bank account
// and card numbers run longer.
const (
	minOperationDigits = 6
	maxOperationDigits = 13
	minAccountDigits   = 14
	maxAccountDigits   = 20
)

// ExtractNumbers scans OCR text for operation and account numbers. Runs
// shorter than an operation reference are ignored — they are dates, amounts
// or noise.
func ExtractNumbers(text string) []DetectedNumber {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []DetectedNumber
	seen := make(map[string]bool)
	for _, loc := range digitRunRe.FindAllStringIndex(text, -1) {
		digits := nonDigitRe.ReplaceAllString(text[loc[0]:loc[1]], "")
		if seen[digits] {
			continue
		}
		var kind constants.NumberKind
		switch n := len(digits); {
		case n >= minOperationDigits && n <= maxOperationDigits:
			kind = constants.NumberOperation
		case n >= minAccountDigits && n <= maxAccountDigits:
			kind = constants.NumberAccount
		default:
			continue
		}
		seen[digits] = true
		out = append(out, DetectedNumber{Digits: digits, Kind: kind, Offset: loc[0]})
	}
	return out
}
