// Package reference computes the ground-truth single-source shortest paths
// that candidate output is checked against.
package reference

import (
	"container/heap"
	"context"
	"fmt"
	"runtime"

	"github.com/programme-lv/pathtester/internal/graph"
	"golang.org/x/sync/errgroup"
)

type arc struct {
	to     int
	weight int64
}

// Solver holds the adjacency list of one graph. It carries no per-query state,
// so ShortestPaths may be called concurrently.
type Solver struct {
	n   int
	adj [][]arc
}

func New(g *graph.Graph) *Solver {
	adj := make([][]arc, g.N)
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], arc{to: e.To, weight: e.Weight})
	}
	return &Solver{n: g.N, adj: adj}
}

// ShortestPaths runs Dijkstra from source with a binary heap and lazy deletion:
// a popped entry whose distance no longer equals the best known one is skipped.
// Unreachable vertices get graph.Unreachable.
func (s *Solver) ShortestPaths(source int) ([]int64, error) {
	if source < 0 || source >= s.n {
		return nil, fmt.Errorf("source %d is out of range [0, %d)", source, s.n)
	}

	dist := make([]int64, s.n)
	for i := range dist {
		dist[i] = graph.Unreachable
	}
	dist[source] = 0

	pq := &queue{{vertex: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(entry)
		if cur.dist != dist[cur.vertex] {
			continue // stale
		}
		for _, a := range s.adj[cur.vertex] {
			alt := cur.dist + a.weight
			if dist[a.to] == graph.Unreachable || alt < dist[a.to] {
				dist[a.to] = alt
				heap.Push(pq, entry{vertex: a.to, dist: alt})
			}
		}
	}
	return dist, nil
}

// SolveAll computes one distance vector per source, in source order. Sources are
// solved in parallel on at most workers goroutines (GOMAXPROCS when workers <= 0).
func SolveAll(ctx context.Context, g *graph.Graph, sources []int, workers int) ([][]int64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := New(g)
	res := make([][]int64, len(sources))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, src := range sources {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := s.ShortestPaths(src)
			if err != nil {
				return err
			}
			res[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute reference distances: %w", err)
	}
	return res, nil
}

type entry struct {
	vertex int
	dist   int64
}

type queue []entry

func (q queue) Len() int           { return len(q) }
func (q queue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)        { *q = append(*q, x.(entry)) }
func (q *queue) Pop() any {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}
