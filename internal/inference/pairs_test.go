package inference

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimstack/claimgraph/internal/model"
)

func makeClaims(n int, claimType model.ClaimType) []model.Claim {
	claims := make([]model.Claim, n)
	for i := 0; i < n; i++ {
		claims[i] = model.Claim{
			ID:         fmt.Sprintf("claim-%03d", i),
			Text:       fmt.Sprintf("claim text %d", i),
			ClaimType:  claimType,
			Confidence: 1.0 - float64(i)*0.01,
		}
	}
	return claims
}

func TestSelectPairs_FewerThanTwoClaims(t *testing.T) {
	assert.Nil(t, SelectPairs(nil, 250))
	assert.Nil(t, SelectPairs(makeClaims(1, model.ClaimTypeFactual), 250))
}

func TestSelectPairs_TwoClaims(t *testing.T) {
	claims := makeClaims(2, model.ClaimTypeFactual)

	pairs := SelectPairs(claims, 250)

	require.Len(t, pairs, 1)
	assert.Equal(t, "claim-000", pairs[0].A.ID)
	assert.Equal(t, "claim-001", pairs[0].B.ID)
}

func TestSelectPairs_NoDuplicatesOrSelfPairs(t *testing.T) {
	claims := makeClaims(30, model.ClaimTypeFactual)

	pairs := SelectPairs(claims, 1000)

	seen := make(map[[2]string]struct{})
	for _, pair := range pairs {
		assert.NotEqual(t, pair.A.ID, pair.B.ID)
		key := pairKey(pair.A.ID, pair.B.ID)
		_, dup := seen[key]
		assert.False(t, dup, "duplicate pair %v", key)
		seen[key] = struct{}{}
	}
}

func TestSelectPairs_RespectsCap(t *testing.T) {
	claims := makeClaims(100, model.ClaimTypeFactual)

	pairs := SelectPairs(claims, 40)

	assert.Len(t, pairs, 40)
}

func TestSelectPairs_TopClaimsFanOutFirst(t *testing.T) {
	// 10 claims: the top 2 by confidence fan out against everything.
	// With a tight cap only fan-out pairs survive.
	claims := makeClaims(10, model.ClaimTypeFactual)

	pairs := SelectPairs(claims, 5)

	require.Len(t, pairs, 5)
	for _, pair := range pairs {
		assert.Equal(t, "claim-000", pair.A.ID)
	}
}

func TestSelectPairs_WithinTypeLocality(t *testing.T) {
	// One dominant claim plus two type groups. Remaining claims only
	// pair within their own type, at most 3 neighbors ahead.
	claims := []model.Claim{
		{ID: "top", ClaimType: model.ClaimTypeCausal, Confidence: 0.99},
		{ID: "f1", ClaimType: model.ClaimTypeFactual, Confidence: 0.90},
		{ID: "s1", ClaimType: model.ClaimTypeStatistical, Confidence: 0.85},
		{ID: "f2", ClaimType: model.ClaimTypeFactual, Confidence: 0.80},
		{ID: "s2", ClaimType: model.ClaimTypeStatistical, Confidence: 0.75},
	}

	pairs := SelectPairs(claims, 250)

	got := make(map[[2]string]struct{})
	for _, pair := range pairs {
		got[pairKey(pair.A.ID, pair.B.ID)] = struct{}{}
	}

	// Fan-out from "top" covers every other claim.
	assert.Contains(t, got, pairKey("top", "f1"))
	assert.Contains(t, got, pairKey("top", "s2"))
	// Same-type neighbors pair up.
	assert.Contains(t, got, pairKey("f1", "f2"))
	assert.Contains(t, got, pairKey("s1", "s2"))
	// Cross-type pairs among the tail never show up.
	assert.NotContains(t, got, pairKey("f1", "s1"))
	assert.NotContains(t, got, pairKey("f2", "s2"))
}

func TestSelectPairs_NeighborWindowIsThree(t *testing.T) {
	claims := makeClaims(10, model.ClaimTypeFactual)

	pairs := SelectPairs(claims, 1000)

	got := make(map[[2]string]struct{})
	for _, pair := range pairs {
		got[pairKey(pair.A.ID, pair.B.ID)] = struct{}{}
	}

	// Top 20% of 10 claims is 2; the tail starts at claim-002. Within
	// the tail, claim-002 pairs with the next three claims only, but
	// fan-out already paired it with everything via the top claims, so
	// assert on a pure tail pair instead: claim-002/claim-006 is 4
	// steps ahead and reachable by neither heuristic.
	assert.Contains(t, got, pairKey("claim-002", "claim-005"))
	assert.NotContains(t, got, pairKey("claim-002", "claim-006"))
}

func TestSelectPairs_ZeroCapUsesDefault(t *testing.T) {
	claims := makeClaims(100, model.ClaimTypeFactual)

	pairs := SelectPairs(claims, 0)

	assert.Len(t, pairs, DefaultMaxPairs)
}
