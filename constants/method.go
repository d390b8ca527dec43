package constants

// MatchMethod identifies which resolver stage produced a resolved item.
type MatchMethod string

const (
	MatchAlias   MatchMethod = "ALIAS"   // synonym table hit
	MatchExact   MatchMethod = "EXACT"   // literal catalog name substring
	MatchFuzzy   MatchMethod = "FUZZY"   // blended similarity score above threshold
	MatchKeyword MatchMethod = "KEYWORD" // generic category fallback
)

// NumberKind classifies long digit sequences found in OCR text. Lowercase
// like Verdict: both land in chat-facing JSON payloads.
type NumberKind string

const (
	NumberOperation NumberKind = "operation" // transfer/operation reference
	NumberAccount   NumberKind = "account"   // bank account or card-like sequence
)
