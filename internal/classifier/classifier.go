// Package classifier wraps the external LLM capabilities the pipeline
// consumes: pairwise claim-relationship judgment and claim extraction.
// Both are opaque collaborators; any failure is reported to the caller
// as an error and never retried here.
package classifier

import (
	"context"

	"github.com/claimstack/claimgraph/internal/model"
)

// Direction values a judgment may carry.
const (
	DirectionAToB          = "A_to_B"
	DirectionBToA          = "B_to_A"
	DirectionBidirectional = "bidirectional"
)

// ClaimInput is the slice of a claim the classifier sees.
type ClaimInput struct {
	ID   string
	Text string
	Type model.ClaimType
}

// Judgment is the classifier's relationship verdict for one claim pair.
// RelationshipType is free text from the model; mapping it onto the
// closed DependencyType set is the assembler's job.
type Judgment struct {
	RelationshipType string   `json:"relationship_type"`
	Direction        string   `json:"direction"`
	Confidence       float64  `json:"confidence"`
	Explanation      string   `json:"explanation"`
	SemanticMarkers  []string `json:"semantic_markers"`
	Strength         string   `json:"strength"`
}

// Classifier judges the semantic relationship between two claims.
type Classifier interface {
	Classify(ctx context.Context, a, b ClaimInput) (*Judgment, error)
}

// ExtractedClaim is one claim the extraction capability found in a
// document.
type ExtractedClaim struct {
	Text               string  `json:"text"`
	Type               string  `json:"type"`
	Confidence         float64 `json:"confidence"`
	EvidenceType       string  `json:"evidence_type"`
	SurroundingContext string  `json:"surrounding_context"`
}

// Extractor pulls atomic claims out of document text.
type Extractor interface {
	Extract(ctx context.Context, text, sourceName, sourceLLM string) ([]ExtractedClaim, error)
}
