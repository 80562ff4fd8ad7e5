// Package worker runs the job execution loops. One loop per registered
// job type; within a loop jobs are processed strictly sequentially.
// Concurrency comes from running multiple worker instances against the
// same queues, not from intra-job parallelism.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claimstack/claimgraph/internal/queue"
	"github.com/claimstack/claimgraph/internal/worker/domain"
)

// Handler executes one job attempt. A returned error fails the attempt
// and consumes one retry from the job's budget.
type Handler interface {
	Handle(ctx context.Context, job *domain.Job) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, job *domain.Job) error

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, job *domain.Job) error {
	return f(ctx, job)
}

// Config holds worker configuration. The store and the handler table
// are injected so the loop stays unit-testable with an in-memory queue.
type Config struct {
	Logger         *slog.Logger
	Store          queue.Store
	Handlers       map[domain.JobType]Handler
	DequeueTimeout time.Duration
	ErrorBackoff   time.Duration
}

// Worker dequeues jobs and dispatches them to per-type handlers,
// tracking status and applying the bounded retry policy.
type Worker struct {
	logger         *slog.Logger
	store          queue.Store
	handlers       map[domain.JobType]Handler
	dequeueTimeout time.Duration
	errorBackoff   time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a worker. The handler table is resolved here, once; job
// types without a handler are simply not served.
func New(cfg *Config) *Worker {
	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5 * time.Second
	}

	errorBackoff := cfg.ErrorBackoff
	if errorBackoff <= 0 {
		errorBackoff = time.Second
	}

	return &Worker{
		logger:         cfg.Logger,
		store:          cfg.Store,
		handlers:       cfg.Handlers,
		dequeueTimeout: dequeueTimeout,
		errorBackoff:   errorBackoff,
		stopChan:       make(chan struct{}),
	}
}

// Start spawns one processing loop per registered job type
func (w *Worker) Start(ctx context.Context) {
	for jobType, handler := range w.handlers {
		w.wg.Add(1)
		go w.loop(ctx, jobType, handler)
	}

	w.logger.Info("Worker started",
		slog.Int("job_types", len(w.handlers)),
	)
}

// Stop signals the loops to exit and waits for in-flight jobs to finish.
// No cancellation is propagated into a running handler; shutdown happens
// between jobs.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// loop is the sequential processing loop for one job type
func (w *Worker) loop(ctx context.Context, jobType domain.JobType, handler Handler) {
	defer w.wg.Done()

	log := w.logger.With(slog.String("job_type", string(jobType)))
	log.Info("Job loop started")

	for {
		select {
		case <-w.stopChan:
			log.Info("Job loop stopping")
			return
		case <-ctx.Done():
			log.Info("Job loop stopping - context canceled")
			return
		default:
		}

		job, err := w.store.Dequeue(ctx, jobType, w.dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Transient store errors never count against any job's
			// attempt budget.
			log.Error("Dequeue failed, backing off",
				slog.Any("error", err),
			)
			select {
			case <-time.After(w.errorBackoff):
			case <-w.stopChan:
				return
			}
			continue
		}

		if job == nil {
			continue
		}

		w.runJob(ctx, log, handler, job)
	}
}

// runJob executes one job attempt and applies the retry policy
func (w *Worker) runJob(ctx context.Context, log *slog.Logger, handler Handler, job *domain.Job) {
	if err := w.store.SetStatus(ctx, job.ID, domain.StatusActive, 0, ""); err != nil {
		log.Warn("Failed to mark job active",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
	}

	err := w.invoke(ctx, handler, job)
	if err == nil {
		if err := w.store.SetStatus(ctx, job.ID, domain.StatusCompleted, 100, ""); err != nil {
			log.Warn("Failed to mark job completed",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
		}
		log.Info("Job completed",
			slog.String("job_id", job.ID),
		)
		return
	}

	log.Error("Job failed",
		slog.String("job_id", job.ID),
		slog.Int("attempts", job.Attempts),
		slog.Any("error", err),
	)

	if serr := w.store.SetStatus(ctx, job.ID, domain.StatusFailed, 0, err.Error()); serr != nil {
		log.Warn("Failed to mark job failed",
			slog.String("job_id", job.ID),
			slog.Any("error", serr),
		)
	}

	if job.Attempts >= domain.MaxRetries {
		// Terminal: surfaced via the status record and logs only.
		log.Error("Job failed permanently, retry budget exhausted",
			slog.String("job_id", job.ID),
			slog.Int("attempts", job.Attempts),
		)
		return
	}

	// Re-enqueue the same logical job with the attempt counter bumped.
	retry := *job
	retry.Attempts++
	if err := w.store.Enqueue(ctx, &retry); err != nil {
		log.Error("Failed to re-enqueue job for retry",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
		return
	}

	log.Info("Job re-enqueued for retry",
		slog.String("job_id", job.ID),
		slog.Int("attempts", retry.Attempts),
	)
}

// invoke runs the handler, converting a panic into an ordinary failure
func (w *Worker) invoke(ctx context.Context, handler Handler, job *domain.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler.Handle(ctx, job)
}
