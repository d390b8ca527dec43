package constants

// Verdict is the canonical outcome of a receipt reconciliation.
type Verdict string

// Stable values (these exact strings appear in logs and chat-facing payloads).
const (
	VerdictMatch         Verdict = "match"         // detected total equals expected total
	VerdictClose         Verdict = "close"         // within the relative tolerance
	VerdictMismatch      Verdict = "mismatch"      // outside the relative tolerance
	VerdictDetectedOnly  Verdict = "detected_only" // amount found, no expected total available
	VerdictLowConfidence Verdict = "low_confidence_detected"
	VerdictNoAmount      Verdict = "no_amount_detected"
)
