package tester

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/programme-lv/pathtester/internal/graph"
)

const DefaultMaxWeight = 1000

type Preset struct {
	Name   string
	Params graph.Params
}

func preset(name string, profile graph.Profile, n, m, k int) Preset {
	return Preset{Name: name, Params: graph.Params{
		Vertices:  n,
		Edges:     m,
		Sources:   k,
		MaxWeight: DefaultMaxWeight,
		Profile:   profile,
	}}
}

// Presets is the builtin scenario matrix, with the two stress sizes appended
// when stress is set.
func Presets(stress bool) []Preset {
	res := []Preset{
		preset("Small Random", graph.ProfileRandom, 100, 500, 10),
		preset("Medium Sparse", graph.ProfileSparse, 1000, 5000, 50),
		preset("Large Sparse", graph.ProfileSparse, 5000, 25000, 200),
		preset("Medium Dense", graph.ProfileDense, 800, 20000, 100),
	}
	if stress {
		res = append(res,
			preset("Stress Large", graph.ProfileRandom, 15000, 150000, 800),
			preset("Stress Max", graph.ProfileRandom, 20000, 200000, 1000),
		)
	}
	return res
}

// GenerateScenarios builds one scenario per preset, drawing all graphs from rng
// in order.
func GenerateScenarios(rng *rand.Rand, presets []Preset, mode Mode) ([]Scenario, error) {
	res := make([]Scenario, 0, len(presets))
	for _, p := range presets {
		g, err := graph.Generate(rng, p.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %q: %w", p.Name, err)
		}
		res = append(res, Scenario{
			ID:    slug(p.Name),
			Name:  p.Name,
			Graph: g,
			Mode:  mode,
		})
	}
	return res, nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
