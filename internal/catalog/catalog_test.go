package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenCatalogFlatList(t *testing.T) {
	catalogJSON := []byte(`[
		{"id": "p-1", "name": "Pizza Margarita", "price": 10.50},
		{"sku": "b-1", "nombre": "Hamburguesa Clásica", "precio": "8.00"},
		{"id": "p-2", "name": "Pizza Pepperoni", "variantes": {"Mediana": 12, "Grande": 15.5}}
	]`)

	products, warnings, err := FlattenCatalog(catalogJSON, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, products, 3)

	assert.Equal(t, "p-1", products[0].ID)
	assert.Equal(t, "pizza margarita", products[0].NormalizedName)
	assert.Equal(t, []string{"pizza", "margarita"}, products[0].Tokens)
	require.NotNil(t, products[0].BasePrice)
	assert.True(t, products[0].BasePrice.Equal(decimal.NewFromFloat(10.50)))

	// sku/nombre/precio spellings and diacritics in names
	assert.Equal(t, "b-1", products[1].ID)
	assert.Equal(t, "hamburguesa clasica", products[1].NormalizedName)

	// variant price keys are normalized
	require.NotNil(t, products[2].VariantPrices)
	assert.True(t, products[2].VariantPrices["mediana"].Equal(decimal.NewFromInt(12)))
	assert.True(t, products[2].VariantPrices["grande"].Equal(decimal.NewFromFloat(15.5)))
	assert.Nil(t, products[2].BasePrice)
}

func TestFlattenCatalogHierarchy(t *testing.T) {
	catalogJSON := []byte(`{
		"categorias": [
			{"productos": [{"id": "p-1", "nombre": "Pizza"}]},
			{"productos": [{"id": "d-1", "nombre": "Refresco"}, {"id": "d-2", "nombre": "Agua"}]}
		]
	}`)

	products, warnings, err := FlattenCatalog(catalogJSON, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, products, 3)
	// input order is preserved across categories
	assert.Equal(t, "p-1", products[0].ID)
	assert.Equal(t, "d-1", products[1].ID)
	assert.Equal(t, "d-2", products[2].ID)
}

func TestFlattenCatalogDegraded(t *testing.T) {
	t.Run("missing id derives from name", func(t *testing.T) {
		products, warnings, err := FlattenCatalog([]byte(`[{"name": "Pizza Grande"}]`), nil)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "pizza grande", products[0].ID)
		assert.Len(t, warnings, 1)
	})
	t.Run("missing name falls back to id", func(t *testing.T) {
		products, warnings, err := FlattenCatalog([]byte(`[{"id": "p-9"}]`), nil)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "p-9", products[0].Name)
		assert.Len(t, warnings, 1)
	})
	t.Run("entry missing both is skipped with warning", func(t *testing.T) {
		products, warnings, err := FlattenCatalog([]byte(`[{"price": 3}, {"id": "ok", "name": "Ok"}]`), nil)
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Len(t, warnings, 1)
	})
	t.Run("empty input yields empty catalog", func(t *testing.T) {
		products, warnings, err := FlattenCatalog(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.Empty(t, warnings)
	})
	t.Run("malformed json is an input error", func(t *testing.T) {
		_, _, err := FlattenCatalog([]byte(`[{`), nil)
		assert.Error(t, err)
	})
}

func TestFingerprint(t *testing.T) {
	a, _, err := FlattenCatalog([]byte(`[{"id": "p-1", "name": "Pizza", "price": 10}]`), nil)
	require.NoError(t, err)
	b, _, err := FlattenCatalog([]byte(`[{"id": "p-1", "name": "Pizza", "price": 10}]`), nil)
	require.NoError(t, err)
	c, _, err := FlattenCatalog([]byte(`[{"id": "p-1", "name": "Pizza", "price": 11}]`), nil)
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(a), Fingerprint(b), "same catalog hashes equal")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c), "price change must change the fingerprint")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(nil))
}

func TestBuildAliasMap(t *testing.T) {
	t.Run("id to alias list orientation", func(t *testing.T) {
		am, err := BuildAliasMap([]byte(`{"p-1": ["marguerita", "margarita clásica"]}`))
		require.NoError(t, err)
		assert.Equal(t, 2, am.Len())
		assert.Equal(t, []string{"p-1"}, am.Candidates("marguerita"))
		assert.Equal(t, []string{"p-1"}, am.Candidates("margarita clasica"))
	})
	t.Run("alias to id orientation", func(t *testing.T) {
		am, err := BuildAliasMap([]byte(`{"margarita": "p-1", "peperoni": "p-2"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"p-1"}, am.Candidates("margarita"))
		assert.Equal(t, []string{"p-2"}, am.Candidates("peperoni"))
	})
	t.Run("ambiguous alias keeps every id", func(t *testing.T) {
		am, err := BuildAliasMap([]byte(`{"p-1": ["combo"], "p-2": ["combo"]}`))
		require.NoError(t, err)
		assert.True(t, am.Ambiguous("combo"))
		assert.ElementsMatch(t, []string{"p-1", "p-2"}, am.Candidates("combo"))
	})
	t.Run("duplicate registrations dedupe", func(t *testing.T) {
		am, err := BuildAliasMap([]byte(`{"p-1": ["combo", "Combo", "COMBO"]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"p-1"}, am.Candidates("combo"))
		assert.False(t, am.Ambiguous("combo"))
	})
	t.Run("aliases sorted longest first", func(t *testing.T) {
		am, err := BuildAliasMap([]byte(`{"p-1": ["pizza especial de la casa", "pizza"]}`))
		require.NoError(t, err)
		ordered := am.Aliases()
		require.Len(t, ordered, 2)
		assert.Equal(t, "pizza especial de la casa", ordered[0])
	})
	t.Run("empty and null inputs are valid", func(t *testing.T) {
		for _, in := range [][]byte{nil, []byte(""), []byte("null"), []byte("{}")} {
			am, err := BuildAliasMap(in)
			require.NoError(t, err)
			assert.Zero(t, am.Len())
		}
	})
	t.Run("unsupported value shape fails", func(t *testing.T) {
		_, err := BuildAliasMap([]byte(`{"margarita": 7}`))
		assert.Error(t, err)
	})
}
