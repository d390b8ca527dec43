// Package similarity provides the lexical distance primitives fuzzy matching
// is built on. All functions are pure and operate on already-normalized text.
package similarity

import (
	"math"

	"github.com/agnivade/levenshtein"
)

// Blend weights for Score. Token overlap protects against word reordering;
// edit distance catches single-word typos. Fuzzy matching depends on the
// two-signal blend, not on either metric alone.
const (
	tokenWeight = 0.65
	editWeight  = 0.35
)

// Levenshtein returns the classic edit distance between a and b.
// Symmetric, zero iff equal.
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// JaroWinkler returns the Jaro similarity of a and b with the Winkler
// common-prefix bonus (up to 4 leading characters, 0.1 weight each).
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	len1, len2 := len(a), len(b)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	matchWindow := max(len1, len2)/2 - 1
	if matchWindow < 0 {
		matchWindow = 0
	}

	aMatches := make([]bool, len1)
	bMatches := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := max(0, i-matchWindow)
		end := min(len2, i+matchWindow+1)
		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	// transpositions counted over matched pairs in order
	transpositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	jaro := (float64(matches)/float64(len1) +
		float64(matches)/float64(len2) +
		(float64(matches)-float64(transpositions)/2)/float64(matches)) / 3.0

	prefix := 0
	for i := 0; i < min(min(len1, len2), 4); i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}

	return jaro + 0.1*float64(prefix)*(1.0-jaro)
}

// TokenOverlap returns |A∩B| / max(|A|,|B|) over the token sets. Order is
// irrelevant and duplicates collapse.
func TokenOverlap(tokensA, tokensB []string) float64 {
	setA := toSet(tokensA)
	setB := toSet(tokensB)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	common := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common++
		}
	}
	return float64(common) / math.Max(float64(len(setA)), float64(len(setB)))
}

// softTokenThreshold is the Jaro-Winkler similarity above which two distinct
// tokens still count toward the overlap, at fractional credit. Below it a
// pair contributes nothing; chat typos sit well above, unrelated words below.
const softTokenThreshold = 0.84

// softOverlap is TokenOverlap with near-identical tokens credited at their
// Jaro-Winkler similarity, each token pairing greedily with its best
// unconsumed counterpart. "amburguesa" still overlaps "hamburguesa".
func softOverlap(tokensA, tokensB []string) float64 {
	setA := toSet(tokensA)
	setB := toSet(tokensB)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	used := make(map[string]bool, len(setB))
	credit := 0.0
	for ta := range setA {
		bestTok, bestSim := "", 0.0
		for tb := range setB {
			if used[tb] {
				continue
			}
			sim := 1.0
			if ta != tb {
				sim = JaroWinkler(ta, tb)
			}
			if sim > bestSim {
				bestTok, bestSim = tb, sim
			}
		}
		if bestSim >= softTokenThreshold {
			used[bestTok] = true
			credit += bestSim
		}
	}
	return credit / math.Max(float64(len(setA)), float64(len(setB)))
}

// Score blends soft token overlap with a length-normalized edit-distance
// score. Result is always in [0,1].
func Score(tokensA []string, a string, tokensB []string, b string) float64 {
	overlap := softOverlap(tokensA, tokensB)

	editScore := 1.0
	if maxLen := math.Max(float64(len(a)), float64(len(b))); maxLen > 0 {
		editScore = 1.0 - float64(Levenshtein(a, b))/maxLen
		if editScore < 0 {
			editScore = 0
		}
	}

	return clamp01(tokenWeight*overlap + editWeight*editScore)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
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
