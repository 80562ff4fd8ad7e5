package extraction

import (
	"context"
	"time"

	"github.com/claimstack/claimgraph/internal/model"
)

// Storage is the persistence surface the extraction handler needs.
type Storage interface {
	// GetDocument returns nil when the document does not exist.
	GetDocument(ctx context.Context, documentID string) (*model.Document, error)

	// InsertClaims appends the extracted claims in one batch.
	InsertClaims(ctx context.Context, claims []model.Claim) error

	// SetDocumentStatus updates the document's status and, for the
	// extracted status, its processed_at timestamp.
	SetDocumentStatus(ctx context.Context, documentID, status string, processedAt time.Time) error

	// CountClaims counts claim rows for the pipeline.
	CountClaims(ctx context.Context, pipelineID string) (int, error)

	// CountUnextractedDocuments counts the pipeline's documents that
	// are not yet in the extracted status.
	CountUnextractedDocuments(ctx context.Context, pipelineID string) (int, error)

	// SetPipelineClaimTotal overwrites the denormalized counter and
	// bumps the pipeline's updated_at.
	SetPipelineClaimTotal(ctx context.Context, pipelineID string, total int) error

	// MarkPipelineCompleted moves the pipeline to completed and stamps
	// completed_at.
	MarkPipelineCompleted(ctx context.Context, pipelineID string) error
}
