package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pedidobot/ordercore/constants"
	"github.com/pedidobot/ordercore/internal/receipt"
	"github.com/pedidobot/ordercore/internal/resolve"
)

func sampleOrder() resolve.ResolvedOrder {
	price := decimal.NewFromInt(12)
	total := decimal.NewFromInt(24)
	return resolve.ResolvedOrder{
		RequestID: "req-1",
		Items: []resolve.ResolvedItem{{
			ProductID:   "p-1",
			DisplayName: "Pizza",
			Quantity:    2,
			Variant:     "mediana",
			Extras:      []string{"sin cebolla"},
			UnitPrice:   &price,
			LineTotal:   &total,
			Confidence:  0.98,
			Evidence: []resolve.MatchEvidence{{
				Method: constants.MatchExact, SpanStart: 4, SpanEnd: 10, Text: "pizzas", Score: 0.98,
			}},
		}},
		Warnings: []string{"catalog entry 3: missing id, derived from name"},
	}
}

func TestOrderAuditXLSX(t *testing.T) {
	svc := NewService(nil)

	t.Run("order only", func(t *testing.T) {
		data, err := svc.OrderAuditXLSX(sampleOrder(), nil)
		require.NoError(t, err)
		require.NotEmpty(t, data)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		got, err := f.GetCellValue("Order", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Pizza", got)
		idx, _ := f.GetSheetIndex("Reconciliation")
		assert.Equal(t, -1, idx)
	})

	t.Run("with reconciliation sheet", func(t *testing.T) {
		detected := decimal.RequireFromString("24.00")
		rec := &receipt.Result{
			RequestID:     "req-1",
			OK:            true,
			Verdict:       constants.VerdictMatch,
			DetectedTotal: &detected,
			Notes:         []string{"detected total matches the expected total exactly"},
		}
		data, err := svc.OrderAuditXLSX(sampleOrder(), rec)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		got, err := f.GetCellValue("Reconciliation", "B1")
		require.NoError(t, err)
		assert.Equal(t, "match", got)
	})
}
