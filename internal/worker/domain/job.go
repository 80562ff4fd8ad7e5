package domain

import (
	"fmt"
	"time"
)

// JobType is the closed set of background job types. Handlers are
// registered per type at worker construction.
type JobType string

const (
	JobTypeClaimExtraction     JobType = "claim_extraction"
	JobTypeDependencyInference JobType = "dependency_inference"
	JobTypeReportGeneration    JobType = "report_generation"
)

// AllJobTypes lists every known job type, used for queue statistics.
var AllJobTypes = []JobType{
	JobTypeClaimExtraction,
	JobTypeDependencyInference,
	JobTypeReportGeneration,
}

// Job status constants
const (
	StatusQueued    = "queued"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// MaxRetries is the number of times a failed job is re-enqueued. A job
// that keeps failing runs 1 + MaxRetries times in total.
const MaxRetries = 3

// Payload carries the business identifiers a job operates on.
type Payload struct {
	PipelineID string `json:"pipeline_id"`
	DocumentID string `json:"document_id,omitempty"`
}

// Job is one queued unit of asynchronous work. A retry re-enqueues the
// same job id and payload with Attempts incremented, so the full retry
// history of a logical job shares one identifier.
type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	Payload   Payload   `json:"payload"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// NewJob builds a job with a fresh identifier composed of the job type
// and a monotonic timestamp component.
func NewJob(jobType JobType, payload Payload) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        fmt.Sprintf("%s:%d", jobType, now.UnixNano()),
		Type:      jobType,
		Payload:   payload,
		Attempts:  0,
		CreatedAt: now,
	}
}

// JobStatus is the ephemeral per-job status record. Records expire 24h
// after their last write, independent of the business records the job
// produced.
type JobStatus struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
