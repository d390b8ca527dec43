package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestReconcile(t *testing.T) {
	rec := NewReconciler(Options{}, nil)

	t.Run("exact match", func(t *testing.T) {
		res := rec.Reconcile("Total: 24.00", dec("24.00"))
		assert.Equal(t, "match", string(res.Verdict))
		assert.True(t, res.OK)
		require.NotNil(t, res.AbsoluteDifference)
		assert.True(t, res.AbsoluteDifference.IsZero())
		assert.NotEmpty(t, res.RequestID)
	})

	t.Run("close within tolerance boundary", func(t *testing.T) {
		// 1.50/25.50 = 0.0588 <= 0.06
		res := rec.Reconcile("Total: 24.00", dec("25.50"))
		assert.Equal(t, "close", string(res.Verdict))
		assert.True(t, res.OK)
	})

	t.Run("mismatch outside tolerance", func(t *testing.T) {
		res := rec.Reconcile("Total: 24.00", dec("30.00"))
		assert.Equal(t, "mismatch", string(res.Verdict))
		assert.False(t, res.OK)
	})

	t.Run("no amount detected", func(t *testing.T) {
		res := rec.Reconcile("gracias por su compra", dec("24.00"))
		assert.Equal(t, "no_amount_detected", string(res.Verdict))
		assert.False(t, res.OK)
	})

	t.Run("empty ocr text", func(t *testing.T) {
		res := rec.Reconcile("   ", dec("24.00"))
		assert.Equal(t, "no_amount_detected", string(res.Verdict))
		assert.False(t, res.OK)
	})

	t.Run("detected only when expected is unknown", func(t *testing.T) {
		res := rec.Reconcile("Total: Bs. 1.250,00", nil)
		assert.Equal(t, "detected_only", string(res.Verdict))
		assert.True(t, res.OK)
		require.NotNil(t, res.DetectedTotal)
		assert.True(t, res.DetectedTotal.Equal(decimal.RequireFromString("1250.00")))
		assert.Nil(t, res.ExpectedTotal)
	})

	t.Run("low confidence detection flagged", func(t *testing.T) {
		// a lone small bare number with no keywords scores low
		res := rec.Reconcile("recibo 3.50", nil)
		assert.Equal(t, "low_confidence_detected", string(res.Verdict))
		assert.True(t, res.OK)
	})

	t.Run("zero expected with nonzero detected mismatches", func(t *testing.T) {
		res := rec.Reconcile("Total: 24.00", dec("0"))
		assert.Equal(t, "mismatch", string(res.Verdict))
		assert.False(t, res.OK)
	})

	t.Run("reference numbers are carried through", func(t *testing.T) {
		res := rec.Reconcile("Total: 24.00 operacion 123456789", dec("24.00"))
		require.Len(t, res.Numbers, 1)
		assert.Equal(t, "123456789", res.Numbers[0].Digits)
	})
}

func TestReconcileRequireExact(t *testing.T) {
	strict := NewReconciler(Options{RequireExact: true}, nil)

	t.Run("close is not ok", func(t *testing.T) {
		res := strict.Reconcile("Total: 24.00", dec("25.50"))
		assert.Equal(t, "close", string(res.Verdict))
		assert.False(t, res.OK)
	})
	t.Run("detected only is not ok", func(t *testing.T) {
		res := strict.Reconcile("Total: 24.00", nil)
		assert.False(t, res.OK)
	})
	t.Run("match is still ok", func(t *testing.T) {
		res := strict.Reconcile("Total: 24.00", dec("24.00"))
		assert.True(t, res.OK)
	})
}

func TestReconcileCustomTolerance(t *testing.T) {
	tight := NewReconciler(Options{ToleranceRatio: 0.01}, nil)
	res := tight.Reconcile("Total: 24.00", dec("25.50"))
	assert.Equal(t, "mismatch", string(res.Verdict))
	assert.False(t, res.OK)
}
