// Package inference implements the dependency-inference pipeline: pair
// selection, judgment assembly into graph edges, and the job handler
// that drives them.
package inference

import (
	"github.com/claimstack/claimgraph/internal/model"
)

// DefaultMaxPairs caps the candidate pair set per inference run.
const DefaultMaxPairs = 250

// Pair is an unordered candidate claim pair submitted to the classifier.
type Pair struct {
	A model.Claim
	B model.Claim
}

// SelectPairs bounds the O(N²) comparison space. Claims must be sorted
// by confidence descending. Two heuristics feed the candidate set:
//
//  1. the top 20% of claims by confidence are paired against every
//     other claim — high-confidence claims are disproportionately
//     likely to be load-bearing in the graph;
//  2. the remaining claims are grouped by type and each is paired with
//     up to the next 3 claims in its group — same-type claims are more
//     likely to relate than arbitrary cross-type pairs.
//
// The union is deduplicated on the unordered id pair, keeping discovery
// order so heuristic 1 pairs survive truncation first.
func SelectPairs(claims []model.Claim, maxPairs int) []Pair {
	if len(claims) < 2 {
		return nil
	}
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}

	seen := make(map[[2]string]struct{})
	pairs := make([]Pair, 0, maxPairs)

	add := func(a, b model.Claim) {
		if a.ID == b.ID || len(pairs) >= maxPairs {
			return
		}
		key := pairKey(a.ID, b.ID)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		pairs = append(pairs, Pair{A: a, B: b})
	}

	// Heuristic 1: high-signal fan-out.
	topCount := len(claims) / 5
	if topCount < 1 {
		topCount = 1
	}
	for _, important := range claims[:topCount] {
		for _, other := range claims {
			add(important, other)
		}
	}

	// Heuristic 2: within-type locality over the remaining claims.
	byType := make(map[model.ClaimType][]model.Claim)
	var typeOrder []model.ClaimType
	for _, claim := range claims[topCount:] {
		if _, ok := byType[claim.ClaimType]; !ok {
			typeOrder = append(typeOrder, claim.ClaimType)
		}
		byType[claim.ClaimType] = append(byType[claim.ClaimType], claim)
	}

	for _, claimType := range typeOrder {
		group := byType[claimType]
		for i := range group {
			for j := i + 1; j < len(group) && j <= i+3; j++ {
				add(group[i], group[j])
			}
		}
	}

	return pairs
}

// pairKey is order-independent so (a,b) and (b,a) collapse to one entry
func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}
