package graph

// Betweenness computes betweenness centrality per node: the fraction of
// shortest paths between other node pairs that pass through it.
// Shortest paths are unweighted (hop count); scores are normalized by
// (n-1)(n-2) for directed graphs with more than two nodes.
func Betweenness(g *Directed) map[string]float64 {
	n := g.NodeCount()
	scores := make([]float64, n)

	// Brandes' accumulation, one BFS per source.
	for s := 0; s < n; s++ {
		stack := make([]int, 0, n)
		preds := make([][]int, n)
		sigma := make([]float64, n)
		dist := make([]int, n)
		for i := range dist {
			dist[i] = -1
		}

		sigma[s] = 1
		dist[s] = 0
		queue := []int{s}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for w := range g.out[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		delta := make([]float64, n)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				scores[w] += delta[w]
			}
		}
	}

	if n > 2 {
		scale := 1.0 / (float64(n-1) * float64(n-2))
		for i := range scores {
			scores[i] *= scale
		}
	}

	result := make(map[string]float64, n)
	for i, id := range g.Nodes() {
		result[id] = scores[i]
	}
	return result
}
