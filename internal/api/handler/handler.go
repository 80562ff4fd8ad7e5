package handler

import (
	"context"
	"log/slog"

	"github.com/claimstack/claimgraph/internal/model"
	"github.com/claimstack/claimgraph/internal/queue"
)

// Storage is the database surface the API handlers need.
type Storage interface {
	GetPipeline(ctx context.Context, pipelineID string) (*model.Pipeline, error)
	PendingDocuments(ctx context.Context, pipelineID string) ([]model.Document, error)
	SetPipelineStatus(ctx context.Context, pipelineID, status string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Storage Storage
	Store   queue.Store
}

// PipelineHandler handles pipeline and job HTTP requests
type PipelineHandler struct {
	logger  *slog.Logger
	storage Storage
	store   queue.Store
}

// NewPipelineHandler creates a new PipelineHandler instance
func NewPipelineHandler(deps *Dependencies) *PipelineHandler {
	return &PipelineHandler{
		logger:  deps.Logger,
		storage: deps.Storage,
		store:   deps.Store,
	}
}
