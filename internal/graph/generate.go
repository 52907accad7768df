package graph

import (
	"fmt"
	"math/rand/v2"

	mapset "github.com/deckarep/golang-set/v2"
)

// Profile selects the edge layout strategy of a generated graph.
type Profile string

const (
	// ProfileRandom lays a path backbone 0 -> 1 -> ... over the first m/4 vertices,
	// then draws the remaining edges uniformly.
	ProfileRandom Profile = "random"
	// ProfileSparse attaches every vertex to a uniformly chosen earlier vertex
	// (in both directions while the budget allows), then fills the rest uniformly.
	ProfileSparse Profile = "sparse"
	// ProfileDense draws all edges uniformly with no backbone.
	ProfileDense Profile = "dense"
)

func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileRandom, ProfileSparse, ProfileDense:
		return Profile(s), nil
	}
	return "", fmt.Errorf("unknown density profile %q (want random, sparse or dense)", s)
}

// Params describes a generated scenario graph.
type Params struct {
	Vertices  int
	Edges     int
	Sources   int
	MaxWeight int64
	Profile   Profile
}

// EffectiveEdges is the edge count Generate will produce: Edges capped at MaxEdges(Vertices).
func (p Params) EffectiveEdges() int {
	return min(p.Edges, MaxEdges(p.Vertices))
}

// Capped reports whether the requested edge count cannot be met on Vertices vertices.
func (p Params) Capped() bool {
	return p.Edges > MaxEdges(p.Vertices)
}

func (p Params) validate() error {
	if p.Vertices <= 0 {
		return fmt.Errorf("vertex count must be positive, got %d", p.Vertices)
	}
	if p.Edges < 0 {
		return fmt.Errorf("edge count must not be negative, got %d", p.Edges)
	}
	if p.MaxWeight < 1 {
		return fmt.Errorf("max weight must be at least 1, got %d", p.MaxWeight)
	}
	if p.Sources < 0 || p.Sources > p.Vertices {
		return fmt.Errorf("source count %d is out of range [0, %d]", p.Sources, p.Vertices)
	}
	return nil
}

// NewRand returns the deterministic random source used for a given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate builds a graph from p using rng. The same rng state and params always
// yield the same graph. Edge counts above MaxEdges are capped, never retried.
func Generate(rng *rand.Rand, p Params) (*Graph, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	b := &builder{
		rng:   rng,
		n:     p.Vertices,
		m:     p.EffectiveEdges(),
		maxW:  p.MaxWeight,
		seen:  mapset.NewThreadUnsafeSetWithSize[pair](p.EffectiveEdges()),
		edges: make([]Edge, 0, p.EffectiveEdges()),
	}

	switch p.Profile {
	case ProfileRandom, "":
		for i := 0; i < min(b.n-1, b.m/4); i++ {
			b.add(i, i+1)
		}
	case ProfileSparse:
		for i := 1; i < min(b.n, b.m/2); i++ {
			parent := rng.IntN(i)
			b.add(parent, i)
			if len(b.edges) < b.m/2 {
				b.add(i, parent)
			}
		}
	case ProfileDense:
	default:
		return nil, fmt.Errorf("unknown density profile %q", p.Profile)
	}
	b.fill()

	return &Graph{
		N:       p.Vertices,
		Edges:   b.edges,
		Sources: SampleSources(rng, p.Vertices, p.Sources),
	}, nil
}

// SampleSources draws k distinct vertices from [0, n) without replacement.
func SampleSources(rng *rand.Rand, n, k int) []int {
	k = min(k, n)
	perm := rng.Perm(n)
	return perm[:k:k]
}

type builder struct {
	rng   *rand.Rand
	n     int
	m     int
	maxW  int64
	seen  mapset.Set[pair]
	edges []Edge
}

func (b *builder) add(from, to int) bool {
	if from == to || len(b.edges) >= b.m || !b.seen.Add(pair{from, to}) {
		return false
	}
	b.edges = append(b.edges, Edge{From: from, To: to, Weight: 1 + b.rng.Int64N(b.maxW)})
	return true
}

// fill tops the edge list up to m. While free pairs are plentiful it rejection
// samples; once more than half of the remaining free pairs are needed it
// enumerates them and shuffles, so near-complete graphs finish in bounded time.
func (b *builder) fill() {
	free := MaxEdges(b.n) - len(b.edges)
	for len(b.edges) < b.m {
		need := b.m - len(b.edges)
		if 2*need > free {
			b.fillByEnumeration()
			return
		}
		if b.add(b.rng.IntN(b.n), b.rng.IntN(b.n)) {
			free--
		}
	}
}

func (b *builder) fillByEnumeration() {
	rest := make([]pair, 0, MaxEdges(b.n)-len(b.edges))
	for u := 0; u < b.n; u++ {
		for v := 0; v < b.n; v++ {
			if u != v && !b.seen.Contains(pair{u, v}) {
				rest = append(rest, pair{u, v})
			}
		}
	}
	b.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	for _, p := range rest {
		if len(b.edges) >= b.m {
			return
		}
		b.add(p.from, p.to)
	}
}
