package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findValue(t *testing.T, amounts []DetectedAmount, want string) DetectedAmount {
	t.Helper()
	target := decimal.RequireFromString(want)
	for _, a := range amounts {
		if a.Value.Equal(target) {
			return a
		}
	}
	t.Fatalf("amount %s not detected in %+v", want, amounts)
	return DetectedAmount{}
}

func TestExtractAmounts(t *testing.T) {
	t.Run("bs prefix with comma decimals", func(t *testing.T) {
		amounts := ExtractAmounts("TOTAL Bs. 1.250,00")
		a := findValue(t, amounts, "1250.00")
		assert.Equal(t, "VES", a.CurrencyHint)
	})
	t.Run("dollar sign with dot decimals", func(t *testing.T) {
		amounts := ExtractAmounts("Pagado: $ 24.50")
		a := findValue(t, amounts, "24.50")
		assert.Equal(t, "USD", a.CurrencyHint)
	})
	t.Run("iso code after the number", func(t *testing.T) {
		amounts := ExtractAmounts("monto 1250.50 VES")
		a := findValue(t, amounts, "1250.50")
		assert.Equal(t, "VES", a.CurrencyHint)
	})
	t.Run("bare decimal", func(t *testing.T) {
		amounts := ExtractAmounts("cobrado 24.00 gracias")
		a := findValue(t, amounts, "24.00")
		assert.Empty(t, a.CurrencyHint)
	})
	t.Run("no recapture of a claimed span", func(t *testing.T) {
		// "Bs. 1.250,00" must yield one amount, not a second bare-decimal hit
		amounts := ExtractAmounts("Bs. 1.250,00")
		require.Len(t, amounts, 1)
	})
	t.Run("sorted by descending value", func(t *testing.T) {
		amounts := ExtractAmounts("subtotal 20.00 total 24.00")
		require.GreaterOrEqual(t, len(amounts), 2)
		for i := 1; i < len(amounts); i++ {
			assert.True(t, amounts[i-1].Value.GreaterThanOrEqual(amounts[i].Value))
		}
	})
	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, ExtractAmounts("   "))
	})
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.250,00", "1250.00", true},
		{"1,250.00", "1250.00", true},
		{"24.00", "24.00", true},
		{"24,00", "24.00", true},
		{"1250", "1250", true},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		assert.Equal(t, tc.ok, ok, "parseAmount(%q)", tc.in)
		if tc.ok {
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "parseAmount(%q) = %s", tc.in, got)
		}
	}
}

func TestSelectTotal(t *testing.T) {
	t.Run("keyword proximity beats magnitude", func(t *testing.T) {
		// the change line holds the largest value; the labeled total still wins
		text := "vuelto entregado al cliente: 100.00 bolivares en efectivo gracias\ntotal a pagar: 24.00"
		total, ok := SelectTotal(ExtractAmounts(text))
		require.True(t, ok)
		assert.True(t, total.Value.Equal(decimal.RequireFromString("24.00")))
	})
	t.Run("falls back to value weighted score", func(t *testing.T) {
		amounts := ExtractAmounts("19.00  3.50")
		total, ok := SelectTotal(amounts)
		require.True(t, ok)
		assert.True(t, total.Value.Equal(decimal.RequireFromString("19.00")))
	})
	t.Run("no candidates", func(t *testing.T) {
		_, ok := SelectTotal(nil)
		assert.False(t, ok)
	})
}

func TestExtractNumbers(t *testing.T) {
	t.Run("operation reference", func(t *testing.T) {
		nums := ExtractNumbers("operacion nro 123456789 confirmada")
		require.Len(t, nums, 1)
		assert.Equal(t, "123456789", nums[0].Digits)
		assert.Equal(t, "operation", string(nums[0].Kind))
	})
	t.Run("account number split by spaces", func(t *testing.T) {
		nums := ExtractNumbers("cuenta 0102 1234 5678 9012")
		require.Len(t, nums, 1)
		assert.Equal(t, "0102123456789012", nums[0].Digits)
		assert.Equal(t, "account", string(nums[0].Kind))
	})
	t.Run("short runs ignored", func(t *testing.T) {
		assert.Empty(t, ExtractNumbers("fecha 12345"))
	})
	t.Run("duplicates collapse", func(t *testing.T) {
		nums := ExtractNumbers("ref 12345678 ... ref 12345678")
		assert.Len(t, nums, 1)
	})
	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, ExtractNumbers(""))
	})
}
