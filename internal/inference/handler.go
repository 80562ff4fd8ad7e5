package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claimstack/claimgraph/internal/classifier"
	"github.com/claimstack/claimgraph/internal/graph"
	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/internal/queue"
	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// DefaultBatchSize is how many pairs are classified between progress
// reports and batch commits.
const DefaultBatchSize = 15

// How long an inference job waits for the per-pipeline metrics lock
// before proceeding anyway, and how long a held lock survives a crashed
// holder.
const (
	lockWait     = 30 * time.Second
	lockPollTick = 500 * time.Millisecond
	lockTTL      = 2 * time.Minute
)

// Progress checkpoints. The pair-processing phase is interpolated
// between pairsStart and pairsEnd; everything else is a fixed step.
const (
	progressClaims  = 10
	progressPairs   = 20
	pairsSpan       = 60
	progressMetrics = 85
	progressStats   = 95
)

// Config holds inference handler dependencies
type Config struct {
	Logger     *slog.Logger
	Store      queue.Store
	Locker     queue.PipelineLocker
	Storage    Storage
	Classifier classifier.Classifier
	MaxPairs   int
	BatchSize  int
}

// Handler processes dependency_inference jobs: it bounds the pairwise
// comparison space, classifies each candidate pair, assembles accepted
// judgments into edges, recomputes graph metrics over the full edge
// set, and refreshes the pipeline's aggregate counters.
type Handler struct {
	logger     *slog.Logger
	store      queue.Store
	locker     queue.PipelineLocker
	storage    Storage
	classifier classifier.Classifier
	assembler  *Assembler
	engine     *graph.Engine
	maxPairs   int
	batchSize  int
}

// NewHandler creates the dependency-inference job handler
func NewHandler(cfg *Config) *Handler {
	maxPairs := cfg.MaxPairs
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Handler{
		logger:     cfg.Logger,
		store:      cfg.Store,
		locker:     cfg.Locker,
		storage:    cfg.Storage,
		classifier: cfg.Classifier,
		assembler:  NewAssembler(cfg.Storage, cfg.Logger),
		engine:     graph.NewEngine(cfg.Logger),
		maxPairs:   maxPairs,
		batchSize:  batchSize,
	}
}

// Handle runs one dependency-inference job attempt
func (h *Handler) Handle(ctx context.Context, job *domain.Job) error {
	pipelineID := job.Payload.PipelineID
	log := h.logger.With(
		slog.String("job_id", job.ID),
		slog.String("pipeline_id", pipelineID),
	)

	pipeline, err := h.storage.GetPipeline(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}
	if pipeline == nil {
		return domain.ErrPipelineNotFound
	}

	claims, err := h.storage.ClaimsByPipeline(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to load claims: %w", err)
	}

	log.Info("Processing dependency inference",
		slog.Int("claims", len(claims)),
	)

	if len(claims) < 2 {
		log.Warn("Not enough claims for dependency analysis")
		return nil
	}

	h.reportProgress(ctx, log, job.ID, progressClaims)

	pairs := SelectPairs(claims, h.maxPairs)
	log.Info("Generated claim pairs",
		slog.Int("pairs", len(pairs)),
	)

	h.reportProgress(ctx, log, job.ID, progressPairs)

	found, err := h.classifyPairs(ctx, log, job.ID, pipelineID, pairs)
	if err != nil {
		return err
	}

	log.Info("Dependency inference pair phase complete",
		slog.Int("dependencies_found", found),
		slog.Int("pairs_analyzed", len(pairs)),
	)

	h.reportProgress(ctx, log, job.ID, progressMetrics)

	if err := h.recomputeMetrics(ctx, log, pipelineID); err != nil {
		return err
	}

	h.reportProgress(ctx, log, job.ID, progressStats)

	total, err := h.storage.CountDependencies(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to count dependencies: %w", err)
	}
	if err := h.storage.SetPipelineDependencyTotal(ctx, pipelineID, total); err != nil {
		return fmt.Errorf("failed to update pipeline stats: %w", err)
	}

	log.Info("Dependency inference complete",
		slog.Int("total_dependencies", total),
	)

	return nil
}

// classifyPairs runs the pair-processing phase in batches. Classifier
// failures skip the pair; storage failures fail the job, leaving
// already-committed batches in place.
func (h *Handler) classifyPairs(ctx context.Context, log *slog.Logger, jobID, pipelineID string, pairs []Pair) (int, error) {
	found := 0

	for start := 0; start < len(pairs); start += h.batchSize {
		end := start + h.batchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		for _, pair := range pairs[start:end] {
			judgment, err := h.classifier.Classify(ctx,
				claimInput(pair.A),
				claimInput(pair.B),
			)
			if err != nil {
				// No judgment for this pair; skip, never retry
				// individually.
				log.Warn("Classifier failed for pair",
					slog.String("claim_a", pair.A.ID),
					slog.String("claim_b", pair.B.ID),
					slog.Any("error", err),
				)
				continue
			}

			inserted, err := h.assembler.Assemble(ctx, pipelineID, pair, judgment)
			if err != nil {
				return found, err
			}
			found += inserted
		}

		progress := progressPairs + (start*pairsSpan)/len(pairs)
		h.reportProgress(ctx, log, jobID, progress)
	}

	return found, nil
}

// recomputeMetrics recalculates graph metrics over the complete edge
// set under the per-pipeline advisory lock
func (h *Handler) recomputeMetrics(ctx context.Context, log *slog.Logger, pipelineID string) error {
	locked := h.waitForLock(ctx, log, pipelineID)
	if locked {
		defer func() {
			if err := h.locker.ReleaseLock(ctx, pipelineID); err != nil {
				log.Warn("Failed to release pipeline lock",
					slog.Any("error", err),
				)
			}
		}()
	}

	edges, err := h.storage.DependenciesByPipeline(ctx, pipelineID)
	if err != nil {
		return fmt.Errorf("failed to load dependencies: %w", err)
	}

	metrics := h.engine.Compute(edges)
	if len(metrics) == 0 {
		return nil
	}

	if err := h.storage.UpdateClaimMetrics(ctx, metrics); err != nil {
		return fmt.Errorf("failed to write claim metrics: %w", err)
	}

	log.Info("Graph metrics updated",
		slog.Int("claims", len(metrics)),
	)

	return nil
}

// waitForLock polls for the advisory lock up to lockWait. Metrics are
// still recomputed when the lock can't be obtained; the lock only
// serializes the common case of doubly-enqueued jobs.
func (h *Handler) waitForLock(ctx context.Context, log *slog.Logger, pipelineID string) bool {
	deadline := time.Now().Add(lockWait)

	for {
		ok, err := h.locker.AcquireLock(ctx, pipelineID, lockTTL)
		if err != nil {
			log.Warn("Failed to acquire pipeline lock",
				slog.Any("error", err),
			)
			return false
		}
		if ok {
			return true
		}

		if time.Now().After(deadline) {
			log.Warn("Pipeline lock still held, recomputing metrics without it")
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(lockPollTick):
		}
	}
}

// reportProgress keeps the status record current; a lagging status is
// an accepted gap, so failures only log
func (h *Handler) reportProgress(ctx context.Context, log *slog.Logger, jobID string, progress int) {
	if err := h.store.SetStatus(ctx, jobID, domain.StatusActive, progress, ""); err != nil {
		log.Warn("Failed to report job progress",
			slog.Int("progress", progress),
			slog.Any("error", err),
		)
	}
}

func claimInput(c model.Claim) classifier.ClaimInput {
	return classifier.ClaimInput{
		ID:   c.ID,
		Text: c.Text,
		Type: c.ClaimType,
	}
}
