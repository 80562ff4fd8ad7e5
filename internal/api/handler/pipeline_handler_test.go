package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimstack/claimgraph/internal/api/dto"
	"github.com/claimstack/claimgraph/internal/api/handler"
	"github.com/claimstack/claimgraph/internal/api/router"
	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/internal/queue"
	"github.com/claimstack/claimgraph/internal/worker/domain"
	"github.com/claimstack/claimgraph/shared/logger"
)

type fakeStorage struct {
	pipelines map[string]*model.Pipeline
	pending   map[string][]model.Document
	statuses  map[string]string
}

func (f *fakeStorage) GetPipeline(ctx context.Context, pipelineID string) (*model.Pipeline, error) {
	p, ok := f.pipelines[pipelineID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (f *fakeStorage) PendingDocuments(ctx context.Context, pipelineID string) ([]model.Document, error) {
	return f.pending[pipelineID], nil
}

func (f *fakeStorage) SetPipelineStatus(ctx context.Context, pipelineID, status string) error {
	if f.statuses == nil {
		f.statuses = make(map[string]string)
	}
	f.statuses[pipelineID] = status
	return nil
}

func newTestRouter(storage *fakeStorage, store queue.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.SetupRouter(&handler.Dependencies{
		Logger:  logger.NewDefault().Logger,
		Storage: storage,
		Store:   store,
	})
}

func apiFixture() *fakeStorage {
	return &fakeStorage{
		pipelines: map[string]*model.Pipeline{
			"pipe-1": {ID: "pipe-1", Status: model.PipelineStatusPending},
		},
		pending: map[string][]model.Document{
			"pipe-1": {
				{ID: "doc-1", PipelineID: "pipe-1", Status: model.DocumentStatusPending},
				{ID: "doc-2", PipelineID: "pipe-1", Status: model.DocumentStatusPending},
			},
		},
	}
}

func TestInferDependencies_EnqueuesJob(t *testing.T) {
	store := queue.NewMemoryStore()
	r := newTestRouter(apiFixture(), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines/pipe-1/infer-dependencies", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.EnqueueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pipe-1", resp.PipelineID)
	assert.Equal(t, domain.StatusQueued, resp.Status)
	assert.NotEmpty(t, resp.JobID)

	depth, err := store.QueueLength(context.Background(), domain.JobTypeDependencyInference)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	status, err := store.GetStatus(context.Background(), resp.JobID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, domain.StatusQueued, status.Status)
}

func TestInferDependencies_UnknownPipeline(t *testing.T) {
	store := queue.NewMemoryStore()
	r := newTestRouter(apiFixture(), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines/ghost/infer-dependencies", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessPipeline_EnqueuesPerPendingDocument(t *testing.T) {
	storage := apiFixture()
	store := queue.NewMemoryStore()
	r := newTestRouter(storage, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines/pipe-1/process", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Jobs, 2)
	assert.Equal(t, model.PipelineStatusProcessing, resp.Status)
	assert.Equal(t, model.PipelineStatusProcessing, storage.statuses["pipe-1"])

	depth, err := store.QueueLength(context.Background(), domain.JobTypeClaimExtraction)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)
}

func TestProcessPipeline_NoPendingDocuments(t *testing.T) {
	storage := apiFixture()
	storage.pending["pipe-1"] = nil
	r := newTestRouter(storage, queue.NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipelines/pipe-1/process", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, storage.statuses)
}

func TestGetJobStatus_ReturnsRecord(t *testing.T) {
	store := queue.NewMemoryStore()
	require.NoError(t, store.SetStatus(context.Background(), "job-1", domain.StatusActive, 45, ""))
	r := newTestRouter(apiFixture(), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.JobStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, domain.StatusActive, resp.Status)
	assert.Equal(t, 45, resp.Progress)
	assert.Empty(t, resp.Error)
}

func TestGetJobStatus_UnknownJob(t *testing.T) {
	r := newTestRouter(apiFixture(), queue.NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/ghost/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetQueueStats_CoversAllJobTypes(t *testing.T) {
	store := queue.NewMemoryStore()
	job := domain.NewJob(domain.JobTypeDependencyInference, domain.Payload{PipelineID: "pipe-1"})
	require.NoError(t, store.Enqueue(context.Background(), job))
	r := newTestRouter(apiFixture(), store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/queues/stats", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.QueueStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Queues[string(domain.JobTypeDependencyInference)])
	assert.Equal(t, int64(0), resp.Queues[string(domain.JobTypeClaimExtraction)])
	assert.Equal(t, int64(0), resp.Queues[string(domain.JobTypeReportGeneration)])
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(apiFixture(), queue.NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
