// Package catalog flattens the menu supplied by the catalog collaborator into
// an indexed product list and builds the alias lookup used by the resolver.
// The input shape is deliberately loose (flat array or categoria hierarchy,
// Spanish or English field names); everything is rebuilt per resolution call.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pedidobot/ordercore/internal/common"
	"github.com/pedidobot/ordercore/internal/textnorm"
)

// Product is one sellable item after flattening.
type Product struct {
	ID             string
	Name           string
	NormalizedName string
	Tokens         []string
	BasePrice      *decimal.Decimal
	VariantPrices  map[string]decimal.Decimal
	RawSource      json.RawMessage
}

// rawProduct accepts both id|sku, name|nombre, price|precio field spellings.
type rawProduct struct {
	ID        string                 `json:"id"`
	SKU       string                 `json:"sku"`
	Name      string                 `json:"name"`
	Nombre    string                 `json:"nombre"`
	Price     *json.Number           `json:"price"`
	Precio    *json.Number           `json:"precio"`
	Variantes map[string]json.Number `json:"variantes"`
	Variants  map[string]json.Number `json:"variants"`
}

type rawCategory struct {
	Productos []json.RawMessage `json:"productos"`
	Products  []json.RawMessage `json:"products"`
}

type rawHierarchy struct {
	Categorias []rawCategory `json:"categorias"`
	Categories []rawCategory `json:"categories"`
}

// FlattenCatalog parses catalogJSON (flat array or categoria hierarchy) into
// an ordered product list. Entries missing both id and name are skipped with a
// warning, not a hard failure.
func FlattenCatalog(catalogJSON []byte, logger *slog.Logger) ([]Product, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raws, err := collectRawProducts(catalogJSON)
	if err != nil {
		return nil, nil, common.InvalidInputErrorf("catalog: %v", err)
	}

	products := make([]Product, 0, len(raws))
	var warnings []string
	for i, raw := range raws {
		var rp rawProduct
		if err := json.Unmarshal(raw, &rp); err != nil {
			warnings = append(warnings, fmt.Sprintf("catalog entry %d: not an object, skipped", i))
			continue
		}
		id := firstNonEmpty(rp.ID, rp.SKU)
		name := firstNonEmpty(rp.Name, rp.Nombre)
		if id == "" && name == "" {
			w := fmt.Sprintf("catalog entry %d: missing id and name, skipped", i)
			warnings = append(warnings, w)
			logger.Warn("catalog.flatten.skip", "index", i, "reason", "missing id and name")
			continue
		}
		if id == "" {
			id = textnorm.Normalize(name)
			warnings = append(warnings, fmt.Sprintf("catalog entry %d (%q): missing id, derived from name", i, name))
		}
		if name == "" {
			name = id
			warnings = append(warnings, fmt.Sprintf("catalog entry %d (%s): missing name, using id", i, id))
		}

		p := Product{
			ID:             id,
			Name:           name,
			NormalizedName: textnorm.Normalize(name),
			RawSource:      raw,
		}
		p.Tokens = strings.Fields(p.NormalizedName)

		if n := firstNumber(rp.Price, rp.Precio); n != nil {
			if d, err := decimal.NewFromString(n.String()); err == nil {
				p.BasePrice = &d
			}
		}
		variants := rp.Variantes
		if len(variants) == 0 {
			variants = rp.Variants
		}
		if len(variants) > 0 {
			p.VariantPrices = make(map[string]decimal.Decimal, len(variants))
			for k, v := range variants {
				if d, err := decimal.NewFromString(v.String()); err == nil {
					p.VariantPrices[textnorm.Normalize(k)] = d
				}
			}
		}
		products = append(products, p)
	}
	return products, warnings, nil
}

// collectRawProducts accepts either a flat JSON array or a
// {categorias:[{productos:[...]}]} hierarchy, preserving input order.
func collectRawProducts(catalogJSON []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(catalogJSON))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var flat []json.RawMessage
		if err := json.Unmarshal(catalogJSON, &flat); err != nil {
			return nil, fmt.Errorf("decode flat list: %w", err)
		}
		return flat, nil
	}
	var h rawHierarchy
	if err := json.Unmarshal(catalogJSON, &h); err != nil {
		return nil, fmt.Errorf("decode hierarchy: %w", err)
	}
	cats := h.Categorias
	if len(cats) == 0 {
		cats = h.Categories
	}
	var out []json.RawMessage
	for _, c := range cats {
		prods := c.Productos
		if len(prods) == 0 {
			prods = c.Products
		}
		out = append(out, prods...)
	}
	return out, nil
}

// Fingerprint hashes the flattened catalog so cache entries are never trusted
// across catalog versions.
func Fingerprint(products []Product) string {
	h := sha256.New()
	for _, p := range products {
		h.Write([]byte(p.ID))
		h.Write([]byte{0})
		h.Write([]byte(p.NormalizedName))
		h.Write([]byte{0})
		if p.BasePrice != nil {
			h.Write([]byte(p.BasePrice.String()))
		}
		h.Write([]byte{0})
		variantKeys := make([]string, 0, len(p.VariantPrices))
		for k := range p.VariantPrices {
			variantKeys = append(variantKeys, k)
		}
		sort.Strings(variantKeys)
		for _, k := range variantKeys {
			v := p.VariantPrices[k]
			h.Write([]byte(k + "=" + v.String() + ";"))
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstNumber(values ...*json.Number) *json.Number {
	for _, v := range values {
		if v != nil && v.String() != "" {
			return v
		}
	}
	return nil
}
