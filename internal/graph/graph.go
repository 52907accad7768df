// Package graph holds the weighted directed graph handed to candidate solvers,
// its wire format and the synthetic generators.
//
// Vertices are 0-based. A distance of Unreachable (-1) means no path exists.
package graph

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Unreachable is the distance reported for vertices with no path from the source.
const Unreachable int64 = -1

type Edge struct {
	From   int
	To     int
	Weight int64
}

// Graph is immutable once built by a generator or the decoder.
type Graph struct {
	N       int
	Edges   []Edge
	Sources []int
}

type pair struct{ from, to int }

// Validate checks the invariants every graph in the harness must hold:
// indices in [0, N), weights >= 1, no self-loops, no duplicate directed pairs
// and distinct sources.
func (g *Graph) Validate() error {
	if g.N <= 0 {
		return fmt.Errorf("vertex count must be positive, got %d", g.N)
	}
	seen := mapset.NewThreadUnsafeSetWithSize[pair](len(g.Edges))
	for i, e := range g.Edges {
		if e.From < 0 || e.From >= g.N || e.To < 0 || e.To >= g.N {
			return fmt.Errorf("edge %d (%d -> %d) is out of range [0, %d)", i, e.From, e.To, g.N)
		}
		if e.From == e.To {
			return fmt.Errorf("edge %d is a self-loop on vertex %d", i, e.From)
		}
		if e.Weight < 1 {
			return fmt.Errorf("edge %d (%d -> %d) has non-positive weight %d", i, e.From, e.To, e.Weight)
		}
		if !seen.Add(pair{e.From, e.To}) {
			return fmt.Errorf("edge %d duplicates directed pair %d -> %d", i, e.From, e.To)
		}
	}
	sources := mapset.NewThreadUnsafeSetWithSize[int](len(g.Sources))
	for i, s := range g.Sources {
		if s < 0 || s >= g.N {
			return fmt.Errorf("source %d (vertex %d) is out of range [0, %d)", i, s, g.N)
		}
		if !sources.Add(s) {
			return fmt.Errorf("source %d repeats vertex %d", i, s)
		}
	}
	return nil
}

// MaxEdges is the number of distinct directed edges without self-loops on n vertices.
func MaxEdges(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1)
}
