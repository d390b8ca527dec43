// Package resolve maps free-form customer text to catalog items with
// quantities, variants and extras. Matching runs as a strict pipeline —
// alias, exact name, fuzzy, generic keyword — over non-overlapping spans of
// the normalized message, then merges duplicates and prices the result.
package resolve

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedidobot/ordercore/constants"
	"github.com/pedidobot/ordercore/internal/catalog"
	"github.com/pedidobot/ordercore/internal/common"
	"github.com/pedidobot/ordercore/internal/extract"
	"github.com/pedidobot/ordercore/internal/similarity"
	"github.com/pedidobot/ordercore/internal/textnorm"
)

// Stage confidences (§ alias/exact/fuzzy/keyword contract).
const (
	confAliasMapped   = 0.95 // alias resolved to a real catalog product
	confAliasBareID   = 0.6  // alias points at an id the catalog does not carry
	confExactName     = 0.98
	confKeywordBound  = 0.6 // fallback keyword bound to a catalog product
	confKeywordOrphan = 0.4 // fallback keyword with no catalog product
	warnThreshold     = 0.6
)

// genericKeywords drive the last-resort fallback so the conversation can
// proceed with an explicit "could not fully identify" signal.
var genericKeywords = []string{
	"pizza", "hamburguesa", "burger", "empanada", "arepa", "perro caliente",
	"pollo", "combo", "bebida", "refresco", "jugo", "cafe", "postre", "torta",
}

// Resolver runs resolution calls. Safe for concurrent use: per-call state
// lives on the stack, the only shared structure is the injected cache.
type Resolver struct {
	opts   Options
	logger *slog.Logger
	cache  *resultCache
}

func NewResolver(opts Options, logger *slog.Logger) (*Resolver, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{opts: opts, logger: logger}
	if opts.CacheEnabled {
		r.cache = newResultCache(opts.CacheTTL)
	}
	return r, nil
}

// Resolve validates and flattens the raw catalog and synonym documents, then
// resolves the message against them. Malformed documents are input errors;
// anything unexpected during matching surfaces as a single
// PROCESSING_FAILED error carrying the cause.
func (r *Resolver) Resolve(catalogJSON, synonymsJSON []byte, message string) (ResolvedOrder, error) {
	if err := catalog.ValidateCatalogJSON(catalogJSON); err != nil {
		return ResolvedOrder{}, common.NewAppError("INVALID_INPUT", "catalog document", err)
	}
	if err := catalog.ValidateSynonymsJSON(synonymsJSON); err != nil {
		return ResolvedOrder{}, common.NewAppError("INVALID_INPUT", "synonyms document", err)
	}
	products, warnings, err := catalog.FlattenCatalog(catalogJSON, r.logger)
	if err != nil {
		return ResolvedOrder{}, err
	}
	aliases, err := catalog.BuildAliasMap(synonymsJSON)
	if err != nil {
		return ResolvedOrder{}, err
	}
	order, err := r.ResolveWithCatalog(products, aliases, message)
	if err != nil {
		return order, err
	}
	order.Warnings = append(warnings, order.Warnings...)
	return order, nil
}

// ResolveWithCatalog resolves the message against a pre-flattened catalog.
func (r *Resolver) ResolveWithCatalog(products []catalog.Product, aliases *catalog.AliasMap, message string) (order ResolvedOrder, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = common.ProcessingError("resolve order", fmt.Errorf("%v", rec))
		}
	}()

	order = ResolvedOrder{
		RequestID:      uuid.NewString(),
		Items:          []ResolvedItem{},
		Warnings:       []string{},
		ExtrasDetected: []string{},
	}

	if len(products) == 0 {
		order.Warnings = append(order.Warnings, "catalog is empty; nothing to match against")
		r.logOrder(order, start, false)
		return order, nil
	}

	normalized := textnorm.ExtremeNormalize(message)
	if normalized == "" {
		order.Warnings = append(order.Warnings, "message is empty after normalization")
		r.logOrder(order, start, false)
		return order, nil
	}

	fingerprint := catalog.Fingerprint(products)
	key := cacheKey(normalized, fingerprint, r.opts.fingerprint())
	if r.cache != nil && !r.opts.Debug {
		if cached, ok := r.cache.get(key); ok {
			cached.RequestID = order.RequestID
			r.logOrder(cached, start, true)
			return cached, nil
		}
	}

	if aliases == nil {
		aliases, _ = catalog.BuildAliasMap(nil)
	}

	p := newPass(r.opts, products, normalized)
	p.matchAliases(aliases)
	p.matchExactNames()
	if r.opts.AllowFuzzy {
		p.matchFuzzy(r.opts.FuzzyThreshold)
	}
	if len(p.items) == 0 {
		p.matchKeywords()
	}

	p.bindExtras()
	order.Items = p.merged()
	order.ExtrasDetected = p.extrasDetected
	order.Warnings = append(order.Warnings, p.warnings...)

	for _, it := range order.Items {
		if it.Confidence < warnThreshold {
			order.Warnings = append(order.Warnings,
				fmt.Sprintf("low confidence (%.2f) for %q; confirm with the customer", it.Confidence, it.DisplayName))
		}
		if len(it.CandidateIDs) > 1 {
			order.Warnings = append(order.Warnings,
				fmt.Sprintf("alias for %q is ambiguous across products %v", it.DisplayName, it.CandidateIDs))
		}
	}

	if r.cache != nil && !r.opts.Debug {
		r.cache.set(key, order)
	}
	r.logOrder(order, start, false)
	return order, nil
}

func (r *Resolver) logOrder(order ResolvedOrder, start time.Time, cached bool) {
	attrs := []any{
		"request_id", order.RequestID,
		"items", len(order.Items),
		"warnings", len(order.Warnings),
		"cached", cached,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if r.opts.Debug {
		for _, it := range order.Items {
			attrs = append(attrs, "item."+it.ProductID, fmt.Sprintf("q=%d conf=%.2f", it.Quantity, it.Confidence))
		}
	}
	r.logger.Info("resolve.order.ok", attrs...)
}

// pass holds the per-call pipeline state: the normalized text, the claimed
// span list shared by all stages, and the items found so far.
type pass struct {
	opts       Options
	products   []catalog.Product
	byID       map[string]*catalog.Product
	text       string
	tokens     []string
	tokenSpans []claim
	claimed    []claim
	items      []ResolvedItem
	matchedIDs map[string]bool
	warnings   []string

	extrasDetected []string
}

type claim struct{ start, end int }

func newPass(opts Options, products []catalog.Product, text string) *pass {
	byID := make(map[string]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	tokens := strings.Fields(text)
	spans := make([]claim, len(tokens))
	offset := 0
	for i, tok := range tokens {
		idx := strings.Index(text[offset:], tok)
		start := offset + idx
		spans[i] = claim{start, start + len(tok)}
		offset = start + len(tok)
	}
	return &pass{
		opts:       opts,
		products:   products,
		byID:       byID,
		text:       text,
		tokens:     tokens,
		tokenSpans: spans,
		matchedIDs: make(map[string]bool),
	}
}

func (p *pass) overlapsClaimed(start, end int) bool {
	for _, c := range p.claimed {
		if start < c.end && end > c.start {
			return true
		}
	}
	return false
}

func (p *pass) claimSpan(start, end int) {
	p.claimed = append(p.claimed, claim{start, end})
}

// matchAliases is stage 1: longest alias first, every non-overlapping
// occurrence. An ambiguous alias resolves to the first candidate id present
// in the catalog; all candidates are kept on the item.
func (p *pass) matchAliases(aliases *catalog.AliasMap) {
	for _, alias := range aliases.Aliases() {
		for _, sp := range findOccurrences(p.text, alias) {
			if p.overlapsClaimed(sp.start, sp.end) {
				continue
			}
			candidates := aliases.Candidates(alias)
			var prod *catalog.Product
			productID := candidates[0]
			for _, id := range candidates {
				if cp, ok := p.byID[id]; ok {
					prod = cp
					productID = id
					break
				}
			}
			conf := confAliasBareID
			displayName := alias
			if prod != nil {
				conf = confAliasMapped
				displayName = prod.Name
			}
			item := p.buildItem(constants.MatchAlias, sp.start, sp.end, prod, productID, displayName, conf)
			if len(candidates) > 1 {
				item.CandidateIDs = append([]string(nil), candidates...)
			}
			p.claimSpan(sp.start, sp.end)
			p.items = append(p.items, item)
			p.matchedIDs[productID] = true
		}
	}
}

// matchExactNames is stage 2: the normalized product name as a literal
// substring, for products the alias stage did not already claim.
func (p *pass) matchExactNames() {
	for i := range p.products {
		prod := &p.products[i]
		if p.matchedIDs[prod.ID] || prod.NormalizedName == "" {
			continue
		}
		for _, sp := range findOccurrences(p.text, prod.NormalizedName) {
			if p.overlapsClaimed(sp.start, sp.end) {
				continue
			}
			item := p.buildItem(constants.MatchExact, sp.start, sp.end, prod, prod.ID, prod.Name, confExactName)
			p.claimSpan(sp.start, sp.end)
			p.items = append(p.items, item)
			p.matchedIDs[prod.ID] = true
		}
	}
}

// matchFuzzy is stage 3: blended similarity between each remaining product
// name and sliding token windows of the message sized like the product name,
// so a long message does not dilute the score of a short product mention.
// The best-scoring window becomes the approximate span.
func (p *pass) matchFuzzy(threshold float64) {
	for i := range p.products {
		prod := &p.products[i]
		if p.matchedIDs[prod.ID] || prod.NormalizedName == "" {
			continue
		}
		score, sp, ok := p.bestWindow(prod)
		if !ok || score < threshold {
			continue
		}
		if p.overlapsClaimed(sp.start, sp.end) {
			continue
		}
		item := p.buildItem(constants.MatchFuzzy, sp.start, sp.end, prod, prod.ID, prod.Name, score)
		p.claimSpan(sp.start, sp.end)
		p.items = append(p.items, item)
		p.matchedIDs[prod.ID] = true
	}
}

// bestWindow slides windows of the product's token length (and one wider)
// across the message tokens and keeps the highest blended score.
func (p *pass) bestWindow(prod *catalog.Product) (float64, claim, bool) {
	k := len(prod.Tokens)
	if k == 0 || len(p.tokens) == 0 {
		return 0, claim{}, false
	}
	widths := []int{k}
	if k > 1 {
		widths = append(widths, k-1)
	}
	widths = append(widths, k+1)

	bestScore := -1.0
	var bestSpan claim
	for _, w := range widths {
		if w < 1 || w > len(p.tokens) {
			continue
		}
		for i := 0; i+w <= len(p.tokens); i++ {
			winTokens := p.tokens[i : i+w]
			winSpan := claim{p.tokenSpans[i].start, p.tokenSpans[i+w-1].end}
			winText := p.text[winSpan.start:winSpan.end]
			s := similarity.Score(winTokens, winText, prod.Tokens, prod.NormalizedName)
			if s > bestScore {
				bestScore = s
				bestSpan = winSpan
			}
		}
	}
	if bestScore < 0 {
		return 0, claim{}, false
	}
	return bestScore, bestSpan, true
}

// matchKeywords is stage 4, only reached when stages 1-3 produced nothing:
// scan for generic category keywords and either bind to a catalog product
// containing the keyword or emit a bare placeholder item.
func (p *pass) matchKeywords() {
	for _, kw := range genericKeywords {
		for _, sp := range findOccurrences(p.text, kw) {
			if p.overlapsClaimed(sp.start, sp.end) {
				continue
			}
			var bound *catalog.Product
			for i := range p.products {
				if containsToken(p.products[i].Tokens, kw) {
					bound = &p.products[i]
					break
				}
			}
			var item ResolvedItem
			if bound != nil {
				item = p.buildItem(constants.MatchKeyword, sp.start, sp.end, bound, bound.ID, bound.Name, confKeywordBound)
				p.matchedIDs[bound.ID] = true
			} else {
				item = p.buildItem(constants.MatchKeyword, sp.start, sp.end, nil, "", kw, confKeywordOrphan)
				p.warnings = append(p.warnings,
					fmt.Sprintf("could not fully identify %q; keyword placeholder emitted", kw))
			}
			p.claimSpan(sp.start, sp.end)
			p.items = append(p.items, item)
		}
	}
}

func (p *pass) buildItem(method constants.MatchMethod, start, end int, prod *catalog.Product, productID, displayName string, conf float64) ResolvedItem {
	qty, ok := extract.Quantity(p.text, start, end)
	if !ok || qty < 1 {
		qty = 1
	}
	if qty > p.opts.MaxQuantity {
		qty = p.opts.MaxQuantity
	}
	variant := extract.Variant(p.text, start, end)

	item := ResolvedItem{
		ProductID:   productID,
		DisplayName: displayName,
		Quantity:    qty,
		Variant:     variant,
		Confidence:  clamp01(conf),
		Evidence: []MatchEvidence{{
			Method:    method,
			SpanStart: start,
			SpanEnd:   end,
			Text:      p.text[start:end],
			Score:     clamp01(conf),
		}},
	}
	priceItem(&item, prod)
	return item
}

// priceItem sets unit price and line total from the catalog: the variant
// price when the variant matched and the catalog defines it, the base price
// otherwise. Unknown prices stay nil.
func priceItem(item *ResolvedItem, prod *catalog.Product) {
	if prod == nil {
		item.UnitPrice = nil
		item.LineTotal = nil
		return
	}
	var unit *decimal.Decimal
	if item.Variant != "" {
		if v, ok := prod.VariantPrices[item.Variant]; ok {
			unit = &v
		}
	}
	if unit == nil && prod.BasePrice != nil {
		v := *prod.BasePrice
		unit = &v
	}
	if unit == nil {
		item.UnitPrice = nil
		item.LineTotal = nil
		return
	}
	u := unit.Round(2)
	item.UnitPrice = &u
	total := u.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
	item.LineTotal = &total
}

// bindExtras attaches each con/sin/agregue phrase to the item whose span most
// closely precedes it; phrases with no preceding match fall back to the first
// item. The full list is also reported message-globally.
func (p *pass) bindExtras() {
	extras := extract.Extras(p.text)
	for _, ex := range extras {
		p.extrasDetected = append(p.extrasDetected, ex.Phrase)
		if len(p.items) == 0 {
			continue
		}
		target := 0
		bestEnd := -1
		for i, it := range p.items {
			for _, ev := range it.Evidence {
				if ev.SpanEnd <= ex.Offset && ev.SpanEnd > bestEnd {
					bestEnd = ev.SpanEnd
					target = i
				}
			}
		}
		p.items[target].Extras = appendUnique(p.items[target].Extras, ex.Phrase)
	}
}

// merged collapses items sharing (productID, variant): quantities accumulate,
// extras union, confidence keeps the maximum and evidence keeps everything.
// Placeholder items merge by display name instead of the empty id.
func (p *pass) merged() []ResolvedItem {
	type mergeKey struct{ id, variant string }
	index := make(map[mergeKey]int)
	out := make([]ResolvedItem, 0, len(p.items))

	for _, it := range p.items {
		id := it.ProductID
		if id == "" {
			id = "keyword:" + it.DisplayName
		}
		k := mergeKey{id, it.Variant}
		if at, ok := index[k]; ok {
			merged := &out[at]
			merged.Quantity += it.Quantity
			if merged.Quantity > p.opts.MaxQuantity {
				merged.Quantity = p.opts.MaxQuantity
			}
			for _, ex := range it.Extras {
				merged.Extras = appendUnique(merged.Extras, ex)
			}
			if it.Confidence > merged.Confidence {
				merged.Confidence = it.Confidence
			}
			merged.Evidence = append(merged.Evidence, it.Evidence...)
			merged.CandidateIDs = unionIDs(merged.CandidateIDs, it.CandidateIDs)
			priceMerged(merged)
			continue
		}
		index[k] = len(out)
		out = append(out, it)
	}

	// deterministic output: by first span position
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Evidence[0].SpanStart < out[j].Evidence[0].SpanStart
	})
	return out
}

// priceMerged recomputes the line total after quantities accumulated.
func priceMerged(item *ResolvedItem) {
	if item.UnitPrice == nil {
		return
	}
	total := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
	item.LineTotal = &total
}

// findOccurrences returns every word-bounded occurrence of phrase in text.
// Text is normalized, so a boundary is the string edge or a single space; a
// trailing "s"/"es" on the matched word is absorbed into the span so "2
// pizzas" matches the catalog's "pizza".
func findOccurrences(text, phrase string) []claim {
	if phrase == "" {
		return nil
	}
	var out []claim
	offset := 0
	for {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return out
		}
		start := offset + idx
		end := start + len(phrase)
		if bounded, realEnd := boundedAt(text, start, end); bounded {
			out = append(out, claim{start, realEnd})
			offset = realEnd
		} else {
			offset = start + 1
		}
	}
}

// boundedAt reports whether [start,end) sits on word boundaries and returns
// the span end after absorbing a plural suffix.
func boundedAt(text string, start, end int) (bool, int) {
	if start > 0 && text[start-1] != ' ' {
		return false, end
	}
	rest := text[end:]
	switch {
	case rest == "" || rest[0] == ' ':
		return true, end
	case rest[0] == 's' && (len(rest) == 1 || rest[1] == ' '):
		return true, end + 1
	case strings.HasPrefix(rest, "es") && (len(rest) == 2 || rest[2] == ' '):
		return true, end + 2
	}
	return false, end
}

func containsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func unionIDs(a, b []string) []string {
	for _, id := range b {
		a = appendUnique(a, id)
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
