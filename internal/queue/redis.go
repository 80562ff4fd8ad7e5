package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// RedisStore implements Store and PipelineLocker on Redis. Queues are
// lists (LPUSH/BRPOP), status records are plain keys with a TTL.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	logger    *slog.Logger
}

// NewRedisStore creates a Redis-backed job store
func NewRedisStore(rdb *redis.Client, namespace string, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		rdb:       rdb,
		namespace: namespace,
		logger:    logger,
	}
}

func (s *RedisStore) queueKey(jobType domain.JobType) string {
	return fmt.Sprintf("queue:%s:%s", s.namespace, jobType)
}

func statusKey(jobID string) string {
	return "job:status:" + jobID
}

func (s *RedisStore) lockKey(pipelineID string) string {
	return fmt.Sprintf("lock:%s:pipeline:%s", s.namespace, pipelineID)
}

// Enqueue pushes the job onto its type's queue and writes the initial
// queued status record
func (s *RedisStore) Enqueue(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	key := s.queueKey(job.Type)
	if err := s.rdb.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	if err := s.SetStatus(ctx, job.ID, domain.StatusQueued, 0, ""); err != nil {
		return err
	}

	s.logger.Info("Enqueued job",
		slog.String("job_id", job.ID),
		slog.String("queue", key),
		slog.Int("attempts", job.Attempts),
	)

	return nil
}

// Dequeue blocks up to timeout for the oldest job of the type
func (s *RedisStore) Dequeue(ctx context.Context, jobType domain.JobType, timeout time.Duration) (*domain.Job, error) {
	res, err := s.rdb.BRPop(ctx, timeout, s.queueKey(jobType)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, nil
	}

	var job domain.Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	s.logger.Info("Dequeued job",
		slog.String("job_id", job.ID),
		slog.String("job_type", string(job.Type)),
	)

	return &job, nil
}

// SetStatus overwrites the status record with a fresh 24h expiry
func (s *RedisStore) SetStatus(ctx context.Context, jobID, status string, progress int, errMsg string) error {
	record := domain.JobStatus{
		JobID:     jobID,
		Status:    status,
		Progress:  progress,
		Error:     errMsg,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}

	if err := s.rdb.Set(ctx, statusKey(jobID), data, StatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}

	s.logger.Debug("Updated job status",
		slog.String("job_id", jobID),
		slog.String("status", status),
		slog.Int("progress", progress),
	)

	return nil
}

// GetStatus returns nil when the record expired or was never written
func (s *RedisStore) GetStatus(ctx context.Context, jobID string) (*domain.JobStatus, error) {
	data, err := s.rdb.Get(ctx, statusKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}

	var record domain.JobStatus
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job status: %w", err)
	}

	return &record, nil
}

// QueueLength reports the number of waiting jobs for the type
func (s *RedisStore) QueueLength(ctx context.Context, jobType domain.JobType) (int64, error) {
	n, err := s.rdb.LLen(ctx, s.queueKey(jobType)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return n, nil
}

// AcquireLock takes the per-pipeline advisory lock with SET NX
func (s *RedisStore) AcquireLock(ctx context.Context, pipelineID string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.lockKey(pipelineID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire pipeline lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock drops the per-pipeline advisory lock
func (s *RedisStore) ReleaseLock(ctx context.Context, pipelineID string) error {
	if err := s.rdb.Del(ctx, s.lockKey(pipelineID)).Err(); err != nil {
		return fmt.Errorf("failed to release pipeline lock: %w", err)
	}
	return nil
}
