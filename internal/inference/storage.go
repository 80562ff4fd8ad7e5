package inference

import (
	"context"

	"github.com/claimstack/claimgraph/internal/model"
)

// Storage is the persistence surface the inference pipeline needs. The
// sqlx implementation lives in internal/storage; tests inject an
// in-memory fake.
type Storage interface {
	// GetPipeline returns nil when the pipeline does not exist.
	GetPipeline(ctx context.Context, pipelineID string) (*model.Pipeline, error)

	// ClaimsByPipeline returns claims ordered by confidence descending.
	ClaimsByPipeline(ctx context.Context, pipelineID string) ([]model.Claim, error)

	// InsertDependency appends one edge record.
	InsertDependency(ctx context.Context, dep *model.Dependency) error

	// DependencyExists reports whether an identical (source, target,
	// relationship type) edge is already persisted for the pipeline.
	DependencyExists(ctx context.Context, pipelineID, sourceClaimID, targetClaimID string, relType model.DependencyType) (bool, error)

	// DependenciesByPipeline returns the complete edge set, prior runs
	// included.
	DependenciesByPipeline(ctx context.Context, pipelineID string) ([]model.Dependency, error)

	// CountDependencies counts edge rows for the pipeline.
	CountDependencies(ctx context.Context, pipelineID string) (int, error)

	// UpdateClaimMetrics writes the four derived metric fields per claim.
	UpdateClaimMetrics(ctx context.Context, metrics []model.ClaimMetrics) error

	// SetPipelineDependencyTotal overwrites the denormalized counter
	// and bumps the pipeline's updated_at.
	SetPipelineDependencyTotal(ctx context.Context, pipelineID string, total int) error
}
