package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedidobot/ordercore/internal/common"
)

func TestValidateCatalogJSON(t *testing.T) {
	valid := [][]byte{
		nil,
		[]byte("  "),
		[]byte(`[]`),
		[]byte(`[{"id": "p-1", "name": "Pizza", "price": 10}]`),
		[]byte(`[{"sku": "p-1", "nombre": "Pizza", "precio": "10.00"}]`),
		[]byte(`{"categorias": [{"productos": [{"id": "p-1", "nombre": "Pizza"}]}]}`),
	}
	for _, in := range valid {
		assert.NoError(t, ValidateCatalogJSON(in), "input %s", in)
	}

	invalid := [][]byte{
		[]byte(`[{`),
		[]byte(`[{"id": 7}]`),
		[]byte(`[{"price": true}]`),
		[]byte(`"just a string"`),
	}
	for _, in := range invalid {
		assert.Error(t, ValidateCatalogJSON(in), "input %s", in)
	}
}

func TestValidateCarriesValidationSentinel(t *testing.T) {
	err := ValidateCatalogJSON([]byte(`[{"id": 7}]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	err = ValidateSynonymsJSON([]byte(`{"p-1": 7}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestValidateSynonymsJSON(t *testing.T) {
	valid := [][]byte{
		nil,
		[]byte(`{}`),
		[]byte(`{"p-1": ["margarita", "clasica"]}`),
		[]byte(`{"margarita": "p-1"}`),
	}
	for _, in := range valid {
		assert.NoError(t, ValidateSynonymsJSON(in), "input %s", in)
	}

	invalid := [][]byte{
		[]byte(`{"p-1": 7}`),
		[]byte(`{"p-1": [""]}`),
		[]byte(`["margarita"]`),
		[]byte(`{"p-1": [7]}`),
	}
	for _, in := range invalid {
		assert.Error(t, ValidateSynonymsJSON(in), "input %s", in)
	}
}
