// Package receipt extracts monetary amounts and reference numbers from OCR
// text and reconciles the most likely total against an expected order total.
// Input text is taken as-is from the OCR collaborator; no provider calls
// happen here.
package receipt

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DetectedAmount is one monetary candidate found in the OCR text.
type DetectedAmount struct {
	RawText      string          `json:"raw_text"`
	Value        decimal.Decimal `json:"value"`
	CurrencyHint string          `json:"currency_hint,omitempty"`
	Offset       int             `json:"offset"`
	TotalScore   float64         `json:"total_score"`
}

// amountPattern pairs a currency notation with its capture group. Ordered:
// more specific notations first so "Bs. 1.250,00" is not re-captured as a
// bare decimal. New notations are additive table entries.
type amountPattern struct {
	re       *regexp.Regexp
	currency string
	group    int
}

var amountPatterns = []amountPattern{
	// local currency symbol prefix: "Bs. 1.250,00", "bs 1250"
	{regexp.MustCompile(`(?i)\bbs\.?\s*([\d.,]+\d|\d)`), "VES", 1},
	// ISO code before or after: "VES 1250,50", "1250.50 USD"
	{regexp.MustCompile(`(?i)\b(?:ves|usd)\s*([\d.,]+\d|\d)`), "", 1},
	{regexp.MustCompile(`(?i)([\d.,]+\d|\d)\s*(?:ves|usd)\b`), "", 1},
	// dollar sign: "$ 24.00"
	{regexp.MustCompile(`\$\s*([\d.,]+\d|\d)`), "USD", 1},
	// bare decimal: "1.250,00", "24.00"
	{regexp.MustCompile(`\b(\d{1,3}(?:[.,]\d{3})*[.,]\d{2})\b`), "", 1},
	// bare integer (last resort; short runs only, long runs are references)
	{regexp.MustCompile(`\b(\d{1,5})\b`), "", 1},
}

var isoCodeRe = regexp.MustCompile(`(?i)\b(ves|usd)\b`)

// totalKeywords boost a candidate when found within keywordRadius characters;
// antiKeywords reduce it (a subtotal is rarely the grand total).
var (
	totalKeywords = []string{"total", "importe", "monto", "pagado", "pago", "saldo", "a pagar"}
	antiKeywords  = []string{"subtotal", "sub total", "descuento", "cambio", "vuelto"}
)

const keywordRadius = 40

// ExtractAmounts scans OCR text for monetary amounts across every known
// notation, deduplicates by (value, offset), scores each candidate for
// total-likelihood and returns them sorted by descending value — on a receipt
// the grand total is usually the largest legible number.
func ExtractAmounts(text string) []DetectedAmount {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	type key struct {
		value  string
		offset int
	}
	seen := make(map[key]bool)
	claimed := make([]span, 0, 8)
	var out []DetectedAmount

	for _, ap := range amountPatterns {
		for _, loc := range ap.re.FindAllStringSubmatchIndex(lower, -1) {
			start, end := loc[0], loc[1]
			gStart, gEnd := loc[2*ap.group], loc[2*ap.group+1]
			if overlapsAny(claimed, start, end) {
				continue
			}
			value, ok := parseAmount(lower[gStart:gEnd])
			if !ok {
				continue
			}
			hint := ap.currency
			if hint == "" {
				if m := isoCodeRe.FindString(lower[start:end]); m != "" {
					hint = strings.ToUpper(m)
				}
			}
			k := key{value.String(), gStart}
			if seen[k] {
				continue
			}
			seen[k] = true
			claimed = append(claimed, span{start, end})
			out = append(out, DetectedAmount{
				RawText:      strings.TrimSpace(text[start:end]),
				Value:        value,
				CurrencyHint: hint,
				Offset:       gStart,
			})
		}
	}

	for i := range out {
		out[i].TotalScore = totalLikelihood(lower, out[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return out
}

type span struct{ start, end int }

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// parseAmount handles both 1.250,00 (comma decimals) and 1,250.00 (dot
// decimals) plus bare integers.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		// comma is the decimal separator
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// totalLikelihood scores how likely a candidate is the receipt's grand total:
// keyword proximity dominates, magnitude and an explicit currency hint help.
// Clamped to [0,1].
func totalLikelihood(lower string, a DetectedAmount) float64 {
	score := 0.25
	if nearAnyKeyword(lower, a.Offset, totalKeywords) {
		score += 0.45
	}
	if nearAnyKeyword(lower, a.Offset, antiKeywords) {
		score -= 0.30
	}
	if a.CurrencyHint != "" {
		score += 0.10
	}
	// magnitude: receipts totals are rarely single digits
	switch {
	case a.Value.GreaterThanOrEqual(decimal.NewFromInt(100)):
		score += 0.15
	case a.Value.GreaterThanOrEqual(decimal.NewFromInt(10)):
		score += 0.10
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func nearAnyKeyword(lower string, offset int, keywords []string) bool {
	start := offset - keywordRadius
	if start < 0 {
		start = 0
	}
	end := offset + keywordRadius
	if end > len(lower) {
		end = len(lower)
	}
	win := lower[start:end]
	for _, kw := range keywords {
		if strings.Contains(win, kw) {
			return true
		}
	}
	return false
}

// SelectTotal picks the single most likely total: any candidate near a
// total-type keyword wins first (ranked by score, then value); otherwise the
// best value-weighted score wins. Returns false when no amounts exist.
func SelectTotal(amounts []DetectedAmount) (DetectedAmount, bool) {
	if len(amounts) == 0 {
		return DetectedAmount{}, false
	}

	const keywordThreshold = 0.55 // only reachable with a total keyword nearby
	best := -1
	for i, a := range amounts {
		if a.TotalScore < keywordThreshold {
			continue
		}
		if best == -1 || a.TotalScore > amounts[best].TotalScore ||
			(a.TotalScore == amounts[best].TotalScore && a.Value.GreaterThan(amounts[best].Value)) {
			best = i
		}
	}
	if best >= 0 {
		return amounts[best], true
	}

	// fall back to the highest value x confidence product
	bestWeight := decimal.Zero
	for i, a := range amounts {
		w := a.Value.Mul(decimal.NewFromFloat(a.TotalScore))
		if best == -1 || w.GreaterThan(bestWeight) {
			best = i
			bestWeight = w
		}
	}
	return amounts[best], true
}
