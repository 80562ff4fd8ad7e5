// Package graph holds the directed weighted claim graph and the metric
// computations derived from it.
package graph

// Directed is a directed weighted graph over string node ids. Adding an
// edge that already exists overwrites its weight; parallel edges are
// not kept.
type Directed struct {
	nodes []string
	index map[string]int
	out   []map[int]float64
	in    []map[int]float64
	edges int
}

// NewDirected creates an empty graph
func NewDirected() *Directed {
	return &Directed{
		index: make(map[string]int),
	}
}

func (g *Directed) node(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, id)
	g.index[id] = i
	g.out = append(g.out, make(map[int]float64))
	g.in = append(g.in, make(map[int]float64))
	return i
}

// AddEdge inserts a weighted edge, creating nodes as needed
func (g *Directed) AddEdge(source, target string, weight float64) {
	s := g.node(source)
	t := g.node(target)

	if _, exists := g.out[s][t]; !exists {
		g.edges++
	}
	g.out[s][t] = weight
	g.in[t][s] = weight
}

// Nodes returns node ids in insertion order
func (g *Directed) Nodes() []string {
	return g.nodes
}

// NodeCount returns the number of nodes
func (g *Directed) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct directed edges
func (g *Directed) EdgeCount() int {
	return g.edges
}

// OutDegree returns the number of outgoing edges for a node id
func (g *Directed) OutDegree(id string) int {
	if i, ok := g.index[id]; ok {
		return len(g.out[i])
	}
	return 0
}

// InDegree returns the number of incoming edges for a node id
func (g *Directed) InDegree(id string) int {
	if i, ok := g.index[id]; ok {
		return len(g.in[i])
	}
	return 0
}
