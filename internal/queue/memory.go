package queue

import (
	"context"
	"sync"
	"time"

	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// MemoryStore is an in-process Store and PipelineLocker with the same
// semantics as the Redis implementation. The worker loop and job
// handlers are constructed against the interfaces, so tests inject this
// instead of a live Redis.
type MemoryStore struct {
	mu       sync.Mutex
	queues   map[domain.JobType][]*domain.Job
	statuses map[string]memoryStatus
	locks    map[string]bool
	signal   chan struct{}

	// now is swappable so expiry behavior stays testable
	now func() time.Time
}

type memoryStatus struct {
	record    domain.JobStatus
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory job store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queues:   make(map[domain.JobType][]*domain.Job),
		statuses: make(map[string]memoryStatus),
		locks:    make(map[string]bool),
		signal:   make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Enqueue appends the job and writes the initial queued status
func (s *MemoryStore) Enqueue(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	copied := *job
	s.queues[job.Type] = append(s.queues[job.Type], &copied)
	s.mu.Unlock()

	if err := s.SetStatus(ctx, job.ID, domain.StatusQueued, 0, ""); err != nil {
		return err
	}

	// Wake one blocked Dequeue, if any
	select {
	case s.signal <- struct{}{}:
	default:
	}

	return nil
}

// Dequeue pops the oldest job for the type, blocking up to timeout
func (s *MemoryStore) Dequeue(ctx context.Context, jobType domain.JobType, timeout time.Duration) (*domain.Job, error) {
	deadline := s.now().Add(timeout)

	for {
		s.mu.Lock()
		if jobs := s.queues[jobType]; len(jobs) > 0 {
			job := jobs[0]
			s.queues[jobType] = jobs[1:]
			s.mu.Unlock()
			return job, nil
		}
		s.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		case <-s.signal:
			timer.Stop()
		}
	}
}

// SetStatus overwrites the status record and refreshes its expiry
func (s *MemoryStore) SetStatus(ctx context.Context, jobID, status string, progress int, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[jobID] = memoryStatus{
		record: domain.JobStatus{
			JobID:     jobID,
			Status:    status,
			Progress:  progress,
			Error:     errMsg,
			UpdatedAt: s.now().UTC(),
		},
		expiresAt: s.now().Add(StatusTTL),
	}

	return nil
}

// GetStatus returns nil for expired or never-written records
func (s *MemoryStore) GetStatus(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.statuses[jobID]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, nil
	}

	record := entry.record
	return &record, nil
}

// QueueLength reports waiting jobs for the type
func (s *MemoryStore) QueueLength(ctx context.Context, jobType domain.JobType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.queues[jobType])), nil
}

// AcquireLock takes the per-pipeline advisory lock
func (s *MemoryStore) AcquireLock(ctx context.Context, pipelineID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks[pipelineID] {
		return false, nil
	}
	s.locks[pipelineID] = true
	return true, nil
}

// ReleaseLock drops the per-pipeline advisory lock
func (s *MemoryStore) ReleaseLock(ctx context.Context, pipelineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, pipelineID)
	return nil
}
