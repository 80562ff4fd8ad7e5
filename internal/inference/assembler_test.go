package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimstack/claimgraph/internal/classifier"
	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/shared/logger"
)

func testPair() Pair {
	return Pair{
		A: model.Claim{ID: "claim-a", Text: "smoking causes cancer", ClaimType: model.ClaimTypeCausal},
		B: model.Claim{ID: "claim-b", Text: "cancer rates rose", ClaimType: model.ClaimTypeStatistical},
	}
}

func TestAssemble_NoneVerdictYieldsNothing(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	inserted, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), noneJudgment())

	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, storage.deps)
}

func TestAssemble_ForwardEdge(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	judgment := &classifier.Judgment{
		RelationshipType: "CAUSAL",
		Direction:        classifier.DirectionAToB,
		Confidence:       0.85,
		Explanation:      "A directly causes B",
		SemanticMarkers:  []string{"causes"},
		Strength:         "strong",
	}

	inserted, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), judgment)

	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	require.Len(t, storage.deps, 1)

	dep := storage.deps[0]
	assert.NotEmpty(t, dep.ID)
	assert.Equal(t, "pipe-1", dep.PipelineID)
	assert.Equal(t, "claim-a", dep.SourceClaimID)
	assert.Equal(t, "claim-b", dep.TargetClaimID)
	assert.Equal(t, model.DependencyCausal, dep.RelationshipType)
	assert.Equal(t, 0.85, dep.Confidence)
	assert.Equal(t, model.StrengthStrong, dep.Strength)
	assert.Equal(t, "A directly causes B", dep.Explanation)
}

func TestAssemble_ReversedEdge(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	judgment := &classifier.Judgment{
		RelationshipType: "EVIDENTIAL",
		Direction:        classifier.DirectionBToA,
		Confidence:       0.7,
	}

	inserted, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), judgment)

	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	require.Len(t, storage.deps, 1)
	assert.Equal(t, "claim-b", storage.deps[0].SourceClaimID)
	assert.Equal(t, "claim-a", storage.deps[0].TargetClaimID)
}

func TestAssemble_BidirectionalMaterializesTwoEdges(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	judgment := &classifier.Judgment{
		RelationshipType: "CONTRADICTORY",
		Direction:        classifier.DirectionBidirectional,
		Confidence:       0.9,
	}

	inserted, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), judgment)

	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	require.Len(t, storage.deps, 2)
	assert.Equal(t, "claim-a", storage.deps[0].SourceClaimID)
	assert.Equal(t, "claim-b", storage.deps[0].TargetClaimID)
	assert.Equal(t, "claim-b", storage.deps[1].SourceClaimID)
	assert.Equal(t, "claim-a", storage.deps[1].TargetClaimID)
	assert.Equal(t, model.DependencyContradictory, storage.deps[0].RelationshipType)
	assert.Equal(t, model.DependencyContradictory, storage.deps[1].RelationshipType)
}

func TestAssemble_DuplicateEdgeSkipped(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	judgment := &classifier.Judgment{
		RelationshipType: "CAUSAL",
		Direction:        classifier.DirectionAToB,
		Confidence:       0.85,
	}

	first, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), judgment)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), judgment)
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Len(t, storage.deps, 1)
}

func TestAssemble_SameEndpointsDifferentTypeBothKept(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	causal := &classifier.Judgment{RelationshipType: "CAUSAL", Confidence: 0.8}
	temporal := &classifier.Judgment{RelationshipType: "TEMPORAL", Confidence: 0.8}

	_, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), causal)
	require.NoError(t, err)
	_, err = assembler.Assemble(context.Background(), "pipe-1", testPair(), temporal)
	require.NoError(t, err)

	assert.Len(t, storage.deps, 2)
}

func TestAssemble_SelfPairIgnored(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	pair := testPair()
	pair.B = pair.A

	inserted, err := assembler.Assemble(context.Background(), "pipe-1", pair, &classifier.Judgment{
		RelationshipType: "CAUSAL",
		Confidence:       0.9,
	})

	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, storage.deps)
}

func TestAssemble_ConfidenceClamped(t *testing.T) {
	storage := &fakeStorage{}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	_, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), &classifier.Judgment{
		RelationshipType: "REFINES",
		Confidence:       1.7,
	})

	require.NoError(t, err)
	require.Len(t, storage.deps, 1)
	assert.Equal(t, 1.0, storage.deps[0].Confidence)
	assert.Equal(t, model.StrengthModerate, storage.deps[0].Strength)
}

func TestAssemble_InsertFailurePropagates(t *testing.T) {
	storage := &fakeStorage{insertErr: errors.New("connection reset")}
	assembler := NewAssembler(storage, logger.NewDefault().Logger)

	_, err := assembler.Assemble(context.Background(), "pipe-1", testPair(), &classifier.Judgment{
		RelationshipType: "CAUSAL",
		Confidence:       0.8,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert dependency")
}

func TestMapRelationshipType(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  model.DependencyType
	}{
		{name: "uppercase causal", label: "CAUSAL", want: model.DependencyCausal},
		{name: "lowercase refines", label: "refines", want: model.DependencyRefines},
		{name: "padded temporal", label: "  Temporal ", want: model.DependencyTemporal},
		{name: "none sentinel", label: "NONE", want: model.DependencyNone},
		{name: "unknown falls back to evidential", label: "correlates", want: model.DependencyEvidential},
		{name: "empty falls back to evidential", label: "", want: model.DependencyEvidential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapRelationshipType(tt.label))
		})
	}
}
