package model

import (
	"time"

	"github.com/lib/pq"
)

// PipelineStatus values mirror the pipelines.status column.
const (
	PipelineStatusPending    = "pending"
	PipelineStatusProcessing = "processing"
	PipelineStatusCompleted  = "completed"
	PipelineStatusFailed     = "failed"
)

// ClaimType categorizes the nature of an extracted claim.
type ClaimType string

const (
	ClaimTypeFactual     ClaimType = "factual"
	ClaimTypeStatistical ClaimType = "statistical"
	ClaimTypeCausal      ClaimType = "causal"
	ClaimTypeOpinion     ClaimType = "opinion"
	ClaimTypeHypothesis  ClaimType = "hypothesis"
)

// DependencyType is the closed set of relationship types an edge may carry.
type DependencyType string

const (
	DependencyCausal        DependencyType = "causal"
	DependencyEvidential    DependencyType = "evidential"
	DependencyTemporal      DependencyType = "temporal"
	DependencyPrerequisite  DependencyType = "prerequisite"
	DependencyContradictory DependencyType = "contradictory"
	DependencyRefines       DependencyType = "refines"
	// DependencyNone is the classifier's "no relationship" sentinel. It is
	// never persisted as an edge.
	DependencyNone DependencyType = "none"
)

// Dependency strength labels reported by the classifier.
const (
	StrengthWeak     = "weak"
	StrengthModerate = "moderate"
	StrengthStrong   = "strong"
)

// Pipeline is one analysis run over a set of uploaded documents.
type Pipeline struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	Name         string     `db:"name"`
	Status       string     `db:"status"`
	ErrorMessage string     `db:"error_message"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	CompletedAt  *time.Time `db:"completed_at"`

	// Denormalized counts, recomputed by scanning the underlying tables.
	TotalClaims         int `db:"total_claims"`
	TotalDependencies   int `db:"total_dependencies"`
	TotalContradictions int `db:"total_contradictions"`
}

// Document is a source file attached to a pipeline. Upload and text
// extraction happen upstream; workers only read extracted_text.
type Document struct {
	ID            string     `db:"id"`
	PipelineID    string     `db:"pipeline_id"`
	Filename      string     `db:"filename"`
	SourceLLM     string     `db:"source_llm"`
	Status        string     `db:"status"`
	ExtractedText string     `db:"extracted_text"`
	CreatedAt     time.Time  `db:"created_at"`
	ProcessedAt   *time.Time `db:"processed_at"`
}

// Document status values.
const (
	DocumentStatusPending   = "pending"
	DocumentStatusExtracted = "extracted"
	DocumentStatusFailed    = "failed"
)

// Claim is an atomic assertion extracted from a document. The inference
// pipeline treats claims as immutable inputs except for the four graph
// metric fields, which it is the sole writer of.
type Claim struct {
	ID                 string    `db:"id"`
	PipelineID         string    `db:"pipeline_id"`
	DocumentID         string    `db:"document_id"`
	Text               string    `db:"text"`
	ClaimType          ClaimType `db:"claim_type"`
	Confidence         float64   `db:"confidence"`
	EvidenceType       string    `db:"evidence_type"`
	SurroundingContext string    `db:"surrounding_context"`
	ExtractedAt        time.Time `db:"extracted_at"`

	// Graph metrics, derived by the metrics engine.
	ImportanceScore float64 `db:"importance_score"`
	Pagerank        float64 `db:"pagerank"`
	Centrality      float64 `db:"centrality"`
	IsFoundational  bool    `db:"is_foundational"`
}

// Dependency is a directed, typed, confidence-scored edge between two
// claims: source semantically supports, enables or precedes target.
type Dependency struct {
	ID               string         `db:"id"`
	PipelineID       string         `db:"pipeline_id"`
	SourceClaimID    string         `db:"source_claim_id"`
	TargetClaimID    string         `db:"target_claim_id"`
	RelationshipType DependencyType `db:"relationship_type"`
	Confidence       float64        `db:"confidence"`
	Strength         string         `db:"strength"`
	Explanation      string         `db:"explanation"`
	SemanticMarkers  pq.StringArray `db:"semantic_markers"`
	CreatedAt        time.Time      `db:"created_at"`
}

// ClaimMetrics is the write-back payload for one graph node.
type ClaimMetrics struct {
	ClaimID         string
	Pagerank        float64
	Centrality      float64
	ImportanceScore float64
	IsFoundational  bool
}
