package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pedidobot/ordercore/internal/common"
	"github.com/pedidobot/ordercore/internal/textnorm"
)

// AliasMap maps a normalized alias phrase to its candidate product ids. An
// alias that is genuinely ambiguous across vendors keeps every id it was
// registered with; earlier mappings are never silently dropped.
type AliasMap struct {
	entries map[string][]string
	ordered []string // aliases sorted longest first, tie-broken lexically
}

// BuildAliasMap accepts a synonym table in either orientation:
//
//	{"prod-1": ["marguerita", "margarita clasica"]}   id -> [aliases]
//	{"margarita": "prod-1"}                           alias -> id
//
// Both shapes may be mixed in one document. Absent/empty input is valid and
// yields an empty map.
func BuildAliasMap(synonymsJSON []byte) (*AliasMap, error) {
	am := &AliasMap{entries: make(map[string][]string)}

	trimmed := strings.TrimSpace(string(synonymsJSON))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return am, nil
	}

	var table map[string]json.RawMessage
	if err := json.Unmarshal(synonymsJSON, &table); err != nil {
		return nil, common.InvalidInputErrorf("synonyms: decode table: %v", err)
	}

	for key, raw := range table {
		// id -> [aliases]
		var aliases []string
		if err := json.Unmarshal(raw, &aliases); err == nil {
			for _, alias := range aliases {
				am.register(alias, key)
			}
			continue
		}
		// alias -> id
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			am.register(key, id)
			continue
		}
		return nil, common.InvalidInputErrorf("synonyms: entry %q is neither a string nor a string list", key)
	}

	am.reindex()
	return am, nil
}

func (m *AliasMap) register(alias, productID string) {
	norm := textnorm.Normalize(alias)
	if norm == "" || productID == "" {
		return
	}
	for _, existing := range m.entries[norm] {
		if existing == productID {
			return
		}
	}
	m.entries[norm] = append(m.entries[norm], productID)
}

func (m *AliasMap) reindex() {
	m.ordered = make([]string, 0, len(m.entries))
	for alias := range m.entries {
		m.ordered = append(m.ordered, alias)
	}
	// Longest first so a one-word alias cannot shadow a two-word alias that
	// contains it.
	sort.Slice(m.ordered, func(i, j int) bool {
		if len(m.ordered[i]) != len(m.ordered[j]) {
			return len(m.ordered[i]) > len(m.ordered[j])
		}
		return m.ordered[i] < m.ordered[j]
	})
}

// Aliases returns every registered alias, longest first.
func (m *AliasMap) Aliases() []string {
	return m.ordered
}

// Candidates returns the product ids registered for a normalized alias.
func (m *AliasMap) Candidates(alias string) []string {
	return m.entries[alias]
}

// Len reports the number of distinct aliases.
func (m *AliasMap) Len() int {
	return len(m.entries)
}

// Ambiguous reports whether the alias maps to more than one product id.
func (m *AliasMap) Ambiguous(alias string) bool {
	return len(m.entries[alias]) > 1
}

// String is a debugging aid; ids are listed in registration order.
func (m *AliasMap) String() string {
	parts := make([]string, 0, len(m.ordered))
	for _, a := range m.ordered {
		parts = append(parts, fmt.Sprintf("%s->%v", a, m.entries[a]))
	}
	return strings.Join(parts, " ")
}
