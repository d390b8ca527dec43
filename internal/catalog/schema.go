package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pedidobot/ordercore/internal/common"
)

// buildCatalogJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Validated at the catalog boundary before flattening; the shape
// is loose on purpose — per-entry id/name problems degrade to warnings later.
func buildCatalogJSONSchema() map[string]any {
	product := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":        map[string]any{"type": "string"},
			"sku":       map[string]any{"type": "string"},
			"name":      map[string]any{"type": "string"},
			"nombre":    map[string]any{"type": "string"},
			"price":     map[string]any{"type": []string{"number", "string"}},
			"precio":    map[string]any{"type": []string{"number", "string"}},
			"variantes": map[string]any{"type": "object"},
			"variants":  map[string]any{"type": "object"},
		},
	}
	category := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"productos": map[string]any{"type": "array", "items": product},
			"products":  map[string]any{"type": "array", "items": product},
		},
	}
	return map[string]any{
		"oneOf": []any{
			map[string]any{"type": "array", "items": product},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"categorias": map[string]any{"type": "array", "items": category},
					"categories": map[string]any{"type": "array", "items": category},
				},
			},
		},
	}
}

func buildSynonymsJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "string", "minLength": 1},
				map[string]any{"type": "array", "items": map[string]any{"type": "string", "minLength": 1}},
			},
		},
	}
}

// validateJSONAgainstSchema validates "data" against "schemaMap".
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return common.WrapError(errors.Join(common.ErrValidation, err), "json does not match schema")
	}
	return nil
}

// ValidateCatalogJSON checks the raw catalog document shape. Empty input is
// valid (the resolver degrades to an empty-catalog warning).
func ValidateCatalogJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return validateJSONAgainstSchema(buildCatalogJSONSchema(), data)
}

// ValidateSynonymsJSON checks the raw synonym table shape in either
// orientation. Empty input is valid.
func ValidateSynonymsJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return validateJSONAgainstSchema(buildSynonymsJSONSchema(), data)
}
