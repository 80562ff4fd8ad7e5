package dto

// EnqueueResponse is returned when a single job is enqueued.
type EnqueueResponse struct {
	JobID      string `json:"job_id"`
	PipelineID string `json:"pipeline_id"`
	Status     string `json:"status"`
}

// DocumentJob pairs a document with the extraction job enqueued for it.
type DocumentJob struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
}

// ProcessResponse is returned by the pipeline process endpoint.
type ProcessResponse struct {
	PipelineID string        `json:"pipeline_id"`
	Status     string        `json:"status"`
	Jobs       []DocumentJob `json:"jobs"`
}

// JobStatusResponse mirrors the ephemeral status record.
type JobStatusResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// QueueStatsResponse reports per-type queue depths.
type QueueStatsResponse struct {
	Queues map[string]int64 `json:"queues"`
}
