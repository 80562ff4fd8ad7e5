package graph

import (
	"fmt"
	"math"
)

const (
	pagerankDamping = 0.85
	pagerankTol     = 1e-6
	pagerankMaxIter = 100
)

// PageRank computes the damped random-walk score per node over the
// weighted directed graph. A walker follows out-edges proportionally to
// their weight; dangling mass is redistributed uniformly. Returns an
// error if the power iteration fails to converge.
func PageRank(g *Directed) (map[string]float64, error) {
	n := g.NodeCount()
	if n == 0 {
		return map[string]float64{}, nil
	}

	// Total out-weight per node; zero marks a dangling node.
	outWeight := make([]float64, n)
	for i := range g.out {
		for _, w := range g.out[i] {
			outWeight[i] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	base := (1 - pagerankDamping) / float64(n)

	for iter := 0; iter < pagerankMaxIter; iter++ {
		prev := scores
		scores = make([]float64, n)

		var danglingSum float64
		for i := range prev {
			if outWeight[i] == 0 {
				danglingSum += prev[i]
			}
		}
		danglingShare := pagerankDamping * danglingSum / float64(n)

		for i := range scores {
			scores[i] = base + danglingShare
		}
		for u := range g.out {
			for v, w := range g.out[u] {
				scores[v] += pagerankDamping * prev[u] * w / outWeight[u]
			}
		}

		var delta float64
		for i := range scores {
			delta += math.Abs(scores[i] - prev[i])
		}
		if delta < float64(n)*pagerankTol {
			result := make(map[string]float64, n)
			for i, id := range g.Nodes() {
				result[id] = scores[i]
			}
			return result, nil
		}
	}

	return nil, fmt.Errorf("pagerank failed to converge in %d iterations", pagerankMaxIter)
}
