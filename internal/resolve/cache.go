package resolve

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// resultCache is a thread-safe bounded-TTL cache for resolution results,
// keyed by (normalized text, catalog fingerprint, options fingerprint).
// Injected into a Resolver rather than living at package level, so tests and
// concurrent resolvers cannot pollute each other. Hits are skipped entirely
// when debug output is requested.
type resultCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]cacheItem
}

type cacheItem struct {
	order      ResolvedOrder
	expiration time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
	}
}

func (c *resultCache) get(key string) (ResolvedOrder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	if !ok || time.Now().After(item.expiration) {
		return ResolvedOrder{}, false
	}
	return cloneOrder(item.order), true
}

func (c *resultCache) set(key string, order ResolvedOrder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// opportunistic eviction keeps the map bounded without a sweeper goroutine
	now := time.Now()
	for k, it := range c.items {
		if now.After(it.expiration) {
			delete(c.items, k)
		}
	}
	c.items[key] = cacheItem{order: cloneOrder(order), expiration: now.Add(c.ttl)}
}

// cloneOrder copies the order so cached entries never share backing arrays
// with results handed to callers; a caller mutating its result must not
// pollute later hits. Cloned on set and on get.
func cloneOrder(o ResolvedOrder) ResolvedOrder {
	out := o
	out.Items = make([]ResolvedItem, len(o.Items))
	copy(out.Items, o.Items)
	for i := range out.Items {
		it := &out.Items[i]
		it.Extras = cloneStrings(it.Extras)
		it.CandidateIDs = cloneStrings(it.CandidateIDs)
		if it.Evidence != nil {
			ev := make([]MatchEvidence, len(it.Evidence))
			copy(ev, it.Evidence)
			it.Evidence = ev
		}
		if it.UnitPrice != nil {
			v := *it.UnitPrice
			it.UnitPrice = &v
		}
		if it.LineTotal != nil {
			v := *it.LineTotal
			it.LineTotal = &v
		}
	}
	out.Warnings = cloneStrings(o.Warnings)
	out.ExtrasDetected = cloneStrings(o.ExtrasDetected)
	return out
}

// cloneStrings preserves nil-ness so empty JSON arrays stay arrays.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// cacheKey hashes the inputs that fully determine a resolution result.
func cacheKey(normalizedText, catalogFingerprint, optionsFingerprint string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", normalizedText, catalogFingerprint, optionsFingerprint))
	return hex.EncodeToString(h[:])
}
