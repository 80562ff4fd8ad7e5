// Package queue implements the durable job store: a FIFO multi-queue
// keyed by job type plus per-job status records with a fixed expiry.
// Queue and status records share the same Redis instance but are
// independent keys.
package queue

import (
	"context"
	"time"

	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// StatusTTL is how long a job status record survives after its last
// write. Status records are ephemeral; the business records a job
// produced outlive them.
const StatusTTL = 24 * time.Hour

// Store is the job queue contract. Implementations must never block on
// enqueue (the queue is unbounded) and must return (nil, nil) from
// Dequeue when no job arrives within the timeout.
type Store interface {
	// Enqueue appends the job to the tail of its type's queue and
	// synchronously writes an initial "queued" status record.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue pops the oldest job for the type, blocking up to timeout.
	Dequeue(ctx context.Context, jobType domain.JobType, timeout time.Duration) (*domain.Job, error)

	// SetStatus overwrites the status record and refreshes its expiry.
	SetStatus(ctx context.Context, jobID, status string, progress int, errMsg string) error

	// GetStatus returns nil once the record expired or was never written.
	GetStatus(ctx context.Context, jobID string) (*domain.JobStatus, error)

	// QueueLength reports the number of jobs waiting for the type.
	QueueLength(ctx context.Context, jobType domain.JobType) (int64, error)
}

// PipelineLocker is an advisory per-pipeline lock used as a
// single-flight guard around the graph metrics write phase. Concurrent
// inference jobs for the same pipeline are otherwise free to interleave.
type PipelineLocker interface {
	// AcquireLock returns true when this caller now holds the lock.
	AcquireLock(ctx context.Context, pipelineID string, ttl time.Duration) (bool, error)

	// ReleaseLock drops the lock. Releasing an unheld lock is a no-op.
	ReleaseLock(ctx context.Context, pipelineID string) error
}
