package domain

import "errors"

var (
	// ErrPipelineNotFound is returned when a job references a pipeline
	// that does not exist
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrDocumentNotFound is returned when an extraction job references
	// a document that does not exist
	ErrDocumentNotFound = errors.New("document not found")
)
