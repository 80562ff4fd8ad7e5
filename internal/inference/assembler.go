package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/claimstack/claimgraph/internal/classifier"
	"github.com/claimstack/claimgraph/internal/model"
)

// Assembler converts accepted pairwise judgments into persisted graph
// edges, applying direction and bidirectionality rules.
type Assembler struct {
	storage Storage
	logger  *slog.Logger
}

// NewAssembler creates an assembler over the given storage
func NewAssembler(storage Storage, logger *slog.Logger) *Assembler {
	return &Assembler{
		storage: storage,
		logger:  logger,
	}
}

// Assemble persists the edge(s) a judgment implies and returns how many
// were inserted. A "none" verdict, a self-pair, or an already-persisted
// identical edge yields zero rows without error.
func (a *Assembler) Assemble(ctx context.Context, pipelineID string, pair Pair, judgment *classifier.Judgment) (int, error) {
	relType := MapRelationshipType(judgment.RelationshipType)
	if relType == model.DependencyNone {
		return 0, nil
	}

	if pair.A.ID == pair.B.ID {
		return 0, nil
	}

	type endpoints struct{ source, target string }
	var directed []endpoints

	switch judgment.Direction {
	case classifier.DirectionBToA:
		directed = []endpoints{{pair.B.ID, pair.A.ID}}
	case classifier.DirectionBidirectional:
		// Materialized as two opposite edges with identical attributes.
		directed = []endpoints{
			{pair.A.ID, pair.B.ID},
			{pair.B.ID, pair.A.ID},
		}
	default:
		directed = []endpoints{{pair.A.ID, pair.B.ID}}
	}

	inserted := 0
	for _, ep := range directed {
		exists, err := a.storage.DependencyExists(ctx, pipelineID, ep.source, ep.target, relType)
		if err != nil {
			return inserted, fmt.Errorf("failed to check for existing dependency: %w", err)
		}
		if exists {
			a.logger.Debug("Skipping duplicate dependency",
				slog.String("source_claim_id", ep.source),
				slog.String("target_claim_id", ep.target),
				slog.String("relationship_type", string(relType)),
			)
			continue
		}

		dep := &model.Dependency{
			ID:               uuid.New().String(),
			PipelineID:       pipelineID,
			SourceClaimID:    ep.source,
			TargetClaimID:    ep.target,
			RelationshipType: relType,
			Confidence:       clampConfidence(judgment.Confidence),
			Strength:         normalizeStrength(judgment.Strength),
			Explanation:      judgment.Explanation,
			SemanticMarkers:  pq.StringArray(judgment.SemanticMarkers),
			CreatedAt:        time.Now().UTC(),
		}

		if err := a.storage.InsertDependency(ctx, dep); err != nil {
			return inserted, fmt.Errorf("failed to insert dependency: %w", err)
		}
		inserted++
	}

	return inserted, nil
}

// MapRelationshipType maps the classifier's free-text label onto the
// closed DependencyType set. Unrecognized labels fall back to
// evidential instead of rejecting the edge.
func MapRelationshipType(label string) model.DependencyType {
	switch model.DependencyType(strings.ToLower(strings.TrimSpace(label))) {
	case model.DependencyCausal:
		return model.DependencyCausal
	case model.DependencyEvidential:
		return model.DependencyEvidential
	case model.DependencyTemporal:
		return model.DependencyTemporal
	case model.DependencyPrerequisite:
		return model.DependencyPrerequisite
	case model.DependencyContradictory:
		return model.DependencyContradictory
	case model.DependencyRefines:
		return model.DependencyRefines
	case model.DependencyNone:
		return model.DependencyNone
	default:
		return model.DependencyEvidential
	}
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func normalizeStrength(strength string) string {
	switch strings.ToLower(strings.TrimSpace(strength)) {
	case model.StrengthWeak:
		return model.StrengthWeak
	case model.StrengthStrong:
		return model.StrengthStrong
	default:
		return model.StrengthModerate
	}
}
