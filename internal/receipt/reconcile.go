package receipt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedidobot/ordercore/constants"
)

// Result is the pure, JSON-serializable outcome of one reconciliation call.
type Result struct {
	RequestID          string            `json:"request_id"`
	OK                 bool              `json:"ok"`
	Verdict            constants.Verdict `json:"verdict"`
	DetectedTotal      *decimal.Decimal  `json:"detected_total,omitempty"`
	ExpectedTotal      *decimal.Decimal  `json:"expected_total,omitempty"`
	AbsoluteDifference *decimal.Decimal  `json:"absolute_difference,omitempty"`
	RelativeDifference *decimal.Decimal  `json:"relative_difference,omitempty"`
	Amounts            []DetectedAmount  `json:"amounts,omitempty"`
	Numbers            []DetectedNumber  `json:"numbers,omitempty"`
	Notes              []string          `json:"notes"`
}

// Options tunes a reconciliation call. The zero value is usable.
type Options struct {
	ToleranceRatio float64 // default 0.06
	RequireExact   bool    // force OK=false unless the verdict is exactly match
}

// detectedOnlyConfidence separates detected_only from low_confidence_detected
// when no expected total is available.
const detectedOnlyConfidence = 0.6

// Reconciler is a façade over amount extraction and verdict computation.
type Reconciler struct {
	opts   Options
	logger *slog.Logger
}

func NewReconciler(opts Options, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ToleranceRatio <= 0 {
		opts.ToleranceRatio = 0.06
	}
	return &Reconciler{opts: opts, logger: logger}
}

// Reconcile extracts amounts from ocrText, selects the most likely total and
// compares it to expectedTotal. A nil expectedTotal means none is available;
// detection-only verdicts still return OK=true so the conversation can
// proceed with a manual-confirmation prompt. Never errors for "no amount
// found" — that is a representable outcome.
func (r *Reconciler) Reconcile(ocrText string, expectedTotal *decimal.Decimal) Result {
	start := time.Now()
	res := Result{
		RequestID: uuid.NewString(),
		Notes:     []string{},
	}

	if strings.TrimSpace(ocrText) == "" {
		res.Verdict = constants.VerdictNoAmount
		res.Notes = append(res.Notes, "no OCR text supplied")
		return r.done(res, start)
	}

	res.Amounts = ExtractAmounts(ocrText)
	res.Numbers = ExtractNumbers(ocrText)

	total, found := SelectTotal(res.Amounts)
	if !found {
		res.Verdict = constants.VerdictNoAmount
		res.Notes = append(res.Notes, "no parseable monetary amount in OCR text")
		return r.done(res, start)
	}
	v := total.Value
	res.DetectedTotal = &v
	res.Notes = append(res.Notes, fmt.Sprintf("detected total %s (score %.2f) from %q",
		v.StringFixed(2), total.TotalScore, total.RawText))

	if expectedTotal == nil {
		if total.TotalScore >= detectedOnlyConfidence {
			res.Verdict = constants.VerdictDetectedOnly
		} else {
			res.Verdict = constants.VerdictLowConfidence
			res.Notes = append(res.Notes, "detection confidence is low; ask the customer to confirm")
		}
		res.OK = !r.opts.RequireExact
		return r.done(res, start)
	}

	expected := *expectedTotal
	res.ExpectedTotal = &expected

	absDiff := v.Sub(expected).Abs()
	res.AbsoluteDifference = &absDiff
	var relDiff decimal.Decimal
	if !expected.IsZero() {
		relDiff = absDiff.Div(expected)
	} else if !absDiff.IsZero() {
		relDiff = decimal.NewFromInt(1)
	}
	res.RelativeDifference = &relDiff

	tolerance := decimal.NewFromFloat(r.opts.ToleranceRatio)
	switch {
	case absDiff.IsZero():
		res.Verdict = constants.VerdictMatch
		res.OK = true
		res.Notes = append(res.Notes, "detected total matches the expected total exactly")
	case relDiff.LessThanOrEqual(tolerance):
		res.Verdict = constants.VerdictClose
		res.OK = !r.opts.RequireExact
		res.Notes = append(res.Notes, fmt.Sprintf("within tolerance: relative difference %s <= %s",
			relDiff.Round(4).String(), tolerance.String()))
	default:
		res.Verdict = constants.VerdictMismatch
		res.OK = false
		res.Notes = append(res.Notes, fmt.Sprintf("outside tolerance: relative difference %s > %s",
			relDiff.Round(4).String(), tolerance.String()))
	}
	if r.opts.RequireExact && res.Verdict != constants.VerdictMatch {
		res.OK = false
	}
	return r.done(res, start)
}

func (r *Reconciler) done(res Result, start time.Time) Result {
	r.logger.Info("receipt.reconcile.ok",
		"request_id", res.RequestID,
		"verdict", string(res.Verdict),
		"amounts", len(res.Amounts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}
