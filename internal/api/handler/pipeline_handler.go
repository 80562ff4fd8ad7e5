package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/claimstack/claimgraph/internal/api/dto"
	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// InferDependencies handles POST /api/v1/pipelines/:pipeline_id/infer-dependencies
// Enqueues one dependency-inference job for the pipeline
func (h *PipelineHandler) InferDependencies(c *gin.Context) {
	pipelineID := c.Param("pipeline_id")

	pipeline, err := h.storage.GetPipeline(c.Request.Context(), pipelineID)
	if err != nil {
		h.logger.Error("Failed to get pipeline", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get pipeline",
		})
		return
	}
	if pipeline == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pipeline not found",
		})
		return
	}

	job := domain.NewJob(domain.JobTypeDependencyInference, domain.Payload{
		PipelineID: pipelineID,
	})

	if err := h.store.Enqueue(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to enqueue job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job",
		})
		return
	}

	h.logger.Info("Dependency inference enqueued",
		slog.String("pipeline_id", pipelineID),
		slog.String("job_id", job.ID),
	)

	c.JSON(http.StatusAccepted, dto.EnqueueResponse{
		JobID:      job.ID,
		PipelineID: pipelineID,
		Status:     domain.StatusQueued,
	})
}

// ProcessPipeline handles POST /api/v1/pipelines/:pipeline_id/process
// Enqueues one claim-extraction job per pending document
func (h *PipelineHandler) ProcessPipeline(c *gin.Context) {
	pipelineID := c.Param("pipeline_id")

	pipeline, err := h.storage.GetPipeline(c.Request.Context(), pipelineID)
	if err != nil {
		h.logger.Error("Failed to get pipeline", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get pipeline",
		})
		return
	}
	if pipeline == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pipeline not found",
		})
		return
	}

	docs, err := h.storage.PendingDocuments(c.Request.Context(), pipelineID)
	if err != nil {
		h.logger.Error("Failed to list pending documents", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list pending documents",
		})
		return
	}
	if len(docs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No pending documents to process",
		})
		return
	}

	if err := h.storage.SetPipelineStatus(c.Request.Context(), pipelineID, model.PipelineStatusProcessing); err != nil {
		h.logger.Error("Failed to update pipeline status", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update pipeline status",
		})
		return
	}

	jobs := make([]dto.DocumentJob, 0, len(docs))
	for _, doc := range docs {
		job := domain.NewJob(domain.JobTypeClaimExtraction, domain.Payload{
			PipelineID: pipelineID,
			DocumentID: doc.ID,
		})
		if err := h.store.Enqueue(c.Request.Context(), job); err != nil {
			h.logger.Error("Failed to enqueue extraction job",
				slog.String("document_id", doc.ID),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to enqueue extraction jobs",
			})
			return
		}
		jobs = append(jobs, dto.DocumentJob{
			JobID:      job.ID,
			DocumentID: doc.ID,
		})
	}

	h.logger.Info("Pipeline processing enqueued",
		slog.String("pipeline_id", pipelineID),
		slog.Int("documents", len(jobs)),
	)

	c.JSON(http.StatusAccepted, dto.ProcessResponse{
		PipelineID: pipelineID,
		Status:     model.PipelineStatusProcessing,
		Jobs:       jobs,
	})
}

// GetJobStatus handles GET /api/v1/jobs/:job_id/status
// Returns the ephemeral status record for a job
func (h *PipelineHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	status, err := h.store.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Error("Failed to get job status", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job status",
		})
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found or status expired",
		})
		return
	}

	c.JSON(http.StatusOK, dto.JobStatusResponse{
		JobID:    status.JobID,
		Status:   status.Status,
		Progress: status.Progress,
		Error:    status.Error,
	})
}

// GetQueueStats handles GET /api/v1/queues/stats
// Reports queue depth per job type
func (h *PipelineHandler) GetQueueStats(c *gin.Context) {
	stats := make(map[string]int64, len(domain.AllJobTypes))
	for _, jobType := range domain.AllJobTypes {
		depth, err := h.store.QueueLength(c.Request.Context(), jobType)
		if err != nil {
			h.logger.Error("Failed to get queue length",
				slog.String("job_type", string(jobType)),
				slog.String("error", err.Error()),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get queue stats",
			})
			return
		}
		stats[string(jobType)] = depth
	}

	c.JSON(http.StatusOK, dto.QueueStatsResponse{Queues: stats})
}
