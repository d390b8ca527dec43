package resolve

import (
	"github.com/shopspring/decimal"

	"github.com/pedidobot/ordercore/constants"
)

// MatchEvidence records which stage claimed which span of the normalized
// message, kept for audit and debugging.
type MatchEvidence struct {
	Method    constants.MatchMethod `json:"method"`
	SpanStart int                   `json:"span_start"`
	SpanEnd   int                   `json:"span_end"`
	Text      string                `json:"text"`
	Score     float64               `json:"score"`
}

// ResolvedItem is one catalog item recognized in the message. Items sharing
// (ProductID, Variant) are merged before the order is returned.
type ResolvedItem struct {
	ProductID    string           `json:"product_id"`
	DisplayName  string           `json:"display_name"`
	Quantity     int              `json:"quantity"`
	Variant      string           `json:"variant,omitempty"`
	Extras       []string         `json:"extras,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal    *decimal.Decimal `json:"line_total,omitempty"`
	Confidence   float64          `json:"confidence"`
	Evidence     []MatchEvidence  `json:"evidence"`
	CandidateIDs []string         `json:"candidate_ids,omitempty"`
}

// ResolvedOrder is the pure, JSON-serializable result of one resolution call.
type ResolvedOrder struct {
	RequestID      string         `json:"request_id"`
	Items          []ResolvedItem `json:"items"`
	Warnings       []string       `json:"warnings"`
	ExtrasDetected []string       `json:"extras_detected"`
}

// ExpectedTotal sums the priced line totals. Returns nil when no item has a
// known price, so the reconciler can distinguish "unknown" from zero.
func (o ResolvedOrder) ExpectedTotal() *decimal.Decimal {
	var sum decimal.Decimal
	priced := false
	for _, it := range o.Items {
		if it.LineTotal != nil {
			sum = sum.Add(*it.LineTotal)
			priced = true
		}
	}
	if !priced {
		return nil
	}
	sum = sum.Round(2)
	return &sum
}
