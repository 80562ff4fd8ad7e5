// Package storage is the sqlx-backed persistence layer shared by the
// API service and the workers.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/shared/postgresql"
)

// Storage handles all database operations for pipelines, documents,
// claims and dependencies.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

// GetPipeline returns nil when the pipeline does not exist
func (s *Storage) GetPipeline(ctx context.Context, pipelineID string) (*model.Pipeline, error) {
	query := `
		SELECT
			id, user_id, name, status, error_message,
			created_at, updated_at, completed_at,
			total_claims, total_dependencies, total_contradictions
		FROM pipelines
		WHERE id = $1
	`

	var pipeline model.Pipeline
	err := s.db.GetContext(ctx, &pipeline, query, pipelineID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}

	return &pipeline, nil
}

// SetPipelineStatus updates the pipeline status
func (s *Storage) SetPipelineStatus(ctx context.Context, pipelineID, status string) error {
	query := `
		UPDATE pipelines
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, status, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to set pipeline status: %w", err)
	}

	return nil
}

// MarkPipelineCompleted moves the pipeline to completed and stamps completed_at
func (s *Storage) MarkPipelineCompleted(ctx context.Context, pipelineID string) error {
	query := `
		UPDATE pipelines
		SET status = $1,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, model.PipelineStatusCompleted, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to complete pipeline: %w", err)
	}

	return nil
}

// SetPipelineDependencyTotal overwrites the denormalized dependency counter
func (s *Storage) SetPipelineDependencyTotal(ctx context.Context, pipelineID string, total int) error {
	query := `
		UPDATE pipelines
		SET total_dependencies = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, total, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to update dependency total: %w", err)
	}

	return nil
}

// SetPipelineClaimTotal overwrites the denormalized claim counter
func (s *Storage) SetPipelineClaimTotal(ctx context.Context, pipelineID string, total int) error {
	query := `
		UPDATE pipelines
		SET total_claims = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, total, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to update claim total: %w", err)
	}

	return nil
}

// GetDocument returns nil when the document does not exist
func (s *Storage) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	query := `
		SELECT
			id, pipeline_id, filename, source_llm, status,
			extracted_text, created_at, processed_at
		FROM documents
		WHERE id = $1
	`

	var doc model.Document
	err := s.db.GetContext(ctx, &doc, query, documentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// PendingDocuments lists the pipeline's documents awaiting extraction
func (s *Storage) PendingDocuments(ctx context.Context, pipelineID string) ([]model.Document, error) {
	query := `
		SELECT
			id, pipeline_id, filename, source_llm, status,
			extracted_text, created_at, processed_at
		FROM documents
		WHERE pipeline_id = $1
		  AND status = $2
		ORDER BY created_at
	`

	var docs []model.Document
	err := s.db.SelectContext(ctx, &docs, query, pipelineID, model.DocumentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending documents: %w", err)
	}

	return docs, nil
}

// SetDocumentStatus updates a document's status; the extracted status
// also stamps processed_at
func (s *Storage) SetDocumentStatus(ctx context.Context, documentID, status string, processedAt time.Time) error {
	query := `
		UPDATE documents
		SET status = $1,
		    processed_at = CASE WHEN $1 = $2 THEN $3 ELSE processed_at END
		WHERE id = $4
	`

	_, err := s.db.ExecContext(ctx, query, status, model.DocumentStatusExtracted, processedAt, documentID)
	if err != nil {
		return fmt.Errorf("failed to set document status: %w", err)
	}

	return nil
}

// CountUnextractedDocuments counts the pipeline's documents not yet extracted
func (s *Storage) CountUnextractedDocuments(ctx context.Context, pipelineID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM documents
		WHERE pipeline_id = $1
		  AND status != $2
	`

	var count int
	err := s.db.GetContext(ctx, &count, query, pipelineID, model.DocumentStatusExtracted)
	if err != nil {
		return 0, fmt.Errorf("failed to count unextracted documents: %w", err)
	}

	return count, nil
}

// ClaimsByPipeline returns the pipeline's claims ordered by confidence
// descending, the order the pair selector expects
func (s *Storage) ClaimsByPipeline(ctx context.Context, pipelineID string) ([]model.Claim, error) {
	query := `
		SELECT
			id, pipeline_id, document_id, text, claim_type,
			confidence, evidence_type, surrounding_context, extracted_at,
			importance_score, pagerank, centrality, is_foundational
		FROM claims
		WHERE pipeline_id = $1
		ORDER BY confidence DESC, id
	`

	var claims []model.Claim
	err := s.db.SelectContext(ctx, &claims, query, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	return claims, nil
}

// InsertClaims appends extracted claims in a single transaction
func (s *Storage) InsertClaims(ctx context.Context, claims []model.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	query := `
		INSERT INTO claims (
			id, pipeline_id, document_id, text, claim_type,
			confidence, evidence_type, surrounding_context, extracted_at
		) VALUES (
			:id, :pipeline_id, :document_id, :text, :claim_type,
			:confidence, :evidence_type, :surrounding_context, :extracted_at
		)
	`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range claims {
		if _, err := tx.NamedExecContext(ctx, query, &claims[i]); err != nil {
			return fmt.Errorf("failed to insert claim: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claims: %w", err)
	}

	return nil
}

// CountClaims counts claim rows for the pipeline
func (s *Storage) CountClaims(ctx context.Context, pipelineID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM claims
		WHERE pipeline_id = $1
	`

	var count int
	err := s.db.GetContext(ctx, &count, query, pipelineID)
	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}

	return count, nil
}

// UpdateClaimMetrics writes the derived graph metric fields per claim
// in a single transaction
func (s *Storage) UpdateClaimMetrics(ctx context.Context, metrics []model.ClaimMetrics) error {
	if len(metrics) == 0 {
		return nil
	}

	query := `
		UPDATE claims
		SET pagerank = $1,
		    centrality = $2,
		    importance_score = $3,
		    is_foundational = $4
		WHERE id = $5
	`

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range metrics {
		_, err := tx.ExecContext(ctx, query,
			m.Pagerank,
			m.Centrality,
			m.ImportanceScore,
			m.IsFoundational,
			m.ClaimID,
		)
		if err != nil {
			return fmt.Errorf("failed to update claim metrics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit claim metrics: %w", err)
	}

	s.logger.Debug("Claim metrics written",
		slog.Int("claims", len(metrics)),
	)

	return nil
}

// InsertDependency appends one edge record
func (s *Storage) InsertDependency(ctx context.Context, dep *model.Dependency) error {
	query := `
		INSERT INTO dependencies (
			id, pipeline_id, source_claim_id, target_claim_id,
			relationship_type, confidence, strength, explanation,
			semantic_markers, created_at
		) VALUES (
			:id, :pipeline_id, :source_claim_id, :target_claim_id,
			:relationship_type, :confidence, :strength, :explanation,
			:semantic_markers, :created_at
		)
	`

	_, err := s.db.NamedExecContext(ctx, query, dep)
	if err != nil {
		return fmt.Errorf("failed to insert dependency: %w", err)
	}

	return nil
}

// DependencyExists reports whether an identical edge is already persisted
func (s *Storage) DependencyExists(ctx context.Context, pipelineID, sourceClaimID, targetClaimID string, relType model.DependencyType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM dependencies
			WHERE pipeline_id = $1
			  AND source_claim_id = $2
			  AND target_claim_id = $3
			  AND relationship_type = $4
		)
	`

	var exists bool
	err := s.db.GetContext(ctx, &exists, query, pipelineID, sourceClaimID, targetClaimID, relType)
	if err != nil {
		return false, fmt.Errorf("failed to check dependency: %w", err)
	}

	return exists, nil
}

// DependenciesByPipeline returns the complete edge set, prior runs included
func (s *Storage) DependenciesByPipeline(ctx context.Context, pipelineID string) ([]model.Dependency, error) {
	query := `
		SELECT
			id, pipeline_id, source_claim_id, target_claim_id,
			relationship_type, confidence, strength, explanation,
			semantic_markers, created_at
		FROM dependencies
		WHERE pipeline_id = $1
		ORDER BY created_at, id
	`

	var deps []model.Dependency
	err := s.db.SelectContext(ctx, &deps, query, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}

	return deps, nil
}

// CountDependencies counts edge rows for the pipeline
func (s *Storage) CountDependencies(ctx context.Context, pipelineID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM dependencies
		WHERE pipeline_id = $1
	`

	var count int
	err := s.db.GetContext(ctx, &count, query, pipelineID)
	if err != nil {
		return 0, fmt.Errorf("failed to count dependencies: %w", err)
	}

	return count, nil
}
