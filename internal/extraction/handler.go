// Package extraction implements the claim-extraction job: it pulls
// atomic claims out of a document's extracted text and persists them
// for the downstream inference pipeline.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claimstack/claimgraph/internal/classifier"
	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/internal/queue"
	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// Progress checkpoints for the extraction job.
const (
	progressFetched   = 10
	progressExtracted = 70
	progressPersisted = 90
)

// Config holds extraction handler dependencies
type Config struct {
	Logger    *slog.Logger
	Store     queue.Store
	Storage   Storage
	Extractor classifier.Extractor
}

// Handler processes claim_extraction jobs.
type Handler struct {
	logger    *slog.Logger
	store     queue.Store
	storage   Storage
	extractor classifier.Extractor
}

// NewHandler creates the claim-extraction job handler
func NewHandler(cfg *Config) *Handler {
	return &Handler{
		logger:    cfg.Logger,
		store:     cfg.Store,
		storage:   cfg.Storage,
		extractor: cfg.Extractor,
	}
}

// Handle runs one claim-extraction job attempt
func (h *Handler) Handle(ctx context.Context, job *domain.Job) error {
	pipelineID := job.Payload.PipelineID
	documentID := job.Payload.DocumentID
	log := h.logger.With(
		slog.String("job_id", job.ID),
		slog.String("pipeline_id", pipelineID),
		slog.String("document_id", documentID),
	)

	doc, err := h.storage.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return domain.ErrDocumentNotFound
	}

	if strings.TrimSpace(doc.ExtractedText) == "" {
		h.markFailed(ctx, log, documentID)
		return fmt.Errorf("document %s has no extracted text", documentID)
	}

	h.reportProgress(ctx, log, job.ID, progressFetched)

	extracted, err := h.extractor.Extract(ctx, doc.ExtractedText, doc.Filename, doc.SourceLLM)
	if err != nil {
		h.markFailed(ctx, log, documentID)
		return fmt.Errorf("claim extraction failed: %w", err)
	}

	log.Info("Extracted claims from document",
		slog.Int("claims", len(extracted)),
	)

	h.reportProgress(ctx, log, job.ID, progressExtracted)

	claims := buildClaims(pipelineID, documentID, extracted)
	if len(claims) > 0 {
		if err := h.storage.InsertClaims(ctx, claims); err != nil {
			return fmt.Errorf("failed to insert claims: %w", err)
		}
	}

	if err := h.storage.SetDocumentStatus(ctx, documentID, model.DocumentStatusExtracted, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark document extracted: %w", err)
	}

	h.reportProgress(ctx, log, job.ID, progressPersisted)

	total, err := h.storage.CountClaims(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to count claims: %w", err)
	}
	if err := h.storage.SetPipelineClaimTotal(ctx, pipelineID, total); err != nil {
		return fmt.Errorf("failed to update pipeline stats: %w", err)
	}

	remaining, err := h.storage.CountUnextractedDocuments(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to count remaining documents: %w", err)
	}
	if remaining == 0 {
		if err := h.storage.MarkPipelineCompleted(ctx, pipelineID); err != nil {
			return fmt.Errorf("failed to complete pipeline: %w", err)
		}
		log.Info("All documents extracted, pipeline completed")
	}

	log.Info("Claim extraction complete",
		slog.Int("total_claims", total),
		slog.Int("documents_remaining", remaining),
	)

	return nil
}

// buildClaims converts extractor output into claim rows, normalizing
// the free-text type onto the closed ClaimType set.
func buildClaims(pipelineID, documentID string, extracted []classifier.ExtractedClaim) []model.Claim {
	now := time.Now().UTC()
	claims := make([]model.Claim, 0, len(extracted))
	for _, ec := range extracted {
		text := strings.TrimSpace(ec.Text)
		if text == "" {
			continue
		}
		claims = append(claims, model.Claim{
			ID:                 uuid.New().String(),
			PipelineID:         pipelineID,
			DocumentID:         documentID,
			Text:               text,
			ClaimType:          normalizeClaimType(ec.Type),
			Confidence:         clampConfidence(ec.Confidence),
			EvidenceType:       ec.EvidenceType,
			SurroundingContext: ec.SurroundingContext,
			ExtractedAt:        now,
		})
	}
	return claims
}

func normalizeClaimType(label string) model.ClaimType {
	switch model.ClaimType(strings.ToLower(strings.TrimSpace(label))) {
	case model.ClaimTypeStatistical:
		return model.ClaimTypeStatistical
	case model.ClaimTypeCausal:
		return model.ClaimTypeCausal
	case model.ClaimTypeOpinion:
		return model.ClaimTypeOpinion
	case model.ClaimTypeHypothesis:
		return model.ClaimTypeHypothesis
	default:
		return model.ClaimTypeFactual
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

// markFailed is best-effort; the job error is what the retry loop acts on
func (h *Handler) markFailed(ctx context.Context, log *slog.Logger, documentID string) {
	if err := h.storage.SetDocumentStatus(ctx, documentID, model.DocumentStatusFailed, time.Time{}); err != nil {
		log.Warn("Failed to mark document failed",
			slog.Any("error", err),
		)
	}
}

// reportProgress keeps the status record current; failures only log
func (h *Handler) reportProgress(ctx context.Context, log *slog.Logger, jobID string, progress int) {
	if err := h.store.SetStatus(ctx, jobID, domain.StatusActive, progress, ""); err != nil {
		log.Warn("Failed to report job progress",
			slog.Int("progress", progress),
			slog.Any("error", err),
		)
	}
}
