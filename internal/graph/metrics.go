package graph

import (
	"log/slog"

	"github.com/claimstack/claimgraph/internal/model"
)

// Foundational-claim thresholds: a claim that asserts several
// relationships but is rarely the target of one acts as a premise
// rather than a conclusion.
const (
	foundationalMinOut = 3
	foundationalMaxIn  = 2
)

// Importance weighting of the two centrality signals.
const (
	pagerankWeight   = 0.7
	centralityWeight = 0.3
)

// Engine derives per-claim graph metrics from the full edge set of a
// pipeline.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a metrics engine
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Compute builds the weighted directed graph from the edge set and
// returns metrics for every claim that appears as a node. Claims absent
// from the edge set get no entry and keep their prior values. An empty
// edge set yields nil.
func (e *Engine) Compute(edges []model.Dependency) []model.ClaimMetrics {
	if len(edges) == 0 {
		e.logger.Warn("No dependencies found for graph metrics")
		return nil
	}

	g := NewDirected()
	for _, edge := range edges {
		g.AddEdge(edge.SourceClaimID, edge.TargetClaimID, edge.Confidence)
	}

	e.logger.Info("Built dependency graph",
		slog.Int("nodes", g.NodeCount()),
		slog.Int("edges", g.EdgeCount()),
	)

	pagerank, err := PageRank(g)
	if err != nil {
		// Degenerate graph: score everything zero rather than failing
		// the job.
		e.logger.Warn("Could not calculate PageRank",
			slog.Any("error", err),
		)
		pagerank = map[string]float64{}
	}

	centrality := Betweenness(g)

	metrics := make([]model.ClaimMetrics, 0, g.NodeCount())
	foundational := 0
	for _, id := range g.Nodes() {
		pr := pagerank[id]
		cent := centrality[id]
		isFoundational := g.OutDegree(id) >= foundationalMinOut && g.InDegree(id) <= foundationalMaxIn
		if isFoundational {
			foundational++
		}

		metrics = append(metrics, model.ClaimMetrics{
			ClaimID:         id,
			Pagerank:        pr,
			Centrality:      cent,
			ImportanceScore: pagerankWeight*pr + centralityWeight*cent,
			IsFoundational:  isFoundational,
		})
	}

	e.logger.Info("Identified foundational claims",
		slog.Int("count", foundational),
	)

	return metrics
}
