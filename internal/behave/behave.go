// Package behave loads scenario suites from TOML: which candidates to run, on
// which graphs, and optionally which outcome each candidate is expected to get.
package behave

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/tester"
)

// SpecDefaults apply to every scenario that does not override them
type SpecDefaults struct {
	Seed      uint64 `toml:"seed"`
	Timeout   string `toml:"timeout"`
	Mode      string `toml:"mode"`
	MaxWeight int64  `toml:"max_weight"`
}

// SpecCandidate is a solver executable; relative paths are resolved against the
// suite file's directory
type SpecCandidate struct {
	ID   string `toml:"id"`
	Path string `toml:"path"`
}

// SpecGenerate describes a generated graph
type SpecGenerate struct {
	Vertices  int    `toml:"vertices"`
	Edges     int    `toml:"edges"`
	Sources   int    `toml:"sources"`
	MaxWeight int64  `toml:"max_weight"`
	Profile   string `toml:"profile"`
}

// SpecExpect is the outcome a candidate should get on a scenario
type SpecExpect struct {
	Candidate string `toml:"candidate"`
	Outcome   string `toml:"outcome"`
}

// SpecScenario maps to [[scenarios]] entries. Exactly one of graph and
// generate must be set; sources, when given, replaces the graph's own.
type SpecScenario struct {
	ID          string        `toml:"id"`
	Description string        `toml:"description"`
	Graph       string        `toml:"graph"`
	Generate    *SpecGenerate `toml:"generate"`
	Sources     []int         `toml:"sources"`
	Mode        string        `toml:"mode"`
	Timeout     string        `toml:"timeout"`
	Expect      []SpecExpect  `toml:"expect"`
}

type specRoot struct {
	Defaults   SpecDefaults    `toml:"defaults"`
	Candidates []SpecCandidate `toml:"candidates"`
	Scenarios  []SpecScenario  `toml:"scenarios"`
}

// Resolver turns a graph reference into a local path.
type Resolver interface {
	Await(ctx context.Context, src string) (string, error)
}

// Suite is a runnable scenario suite
type Suite struct {
	Candidates []tester.Candidate
	Scenarios  []tester.Scenario
	// Expect maps scenario ID to candidate ID to the expected outcome.
	Expect map[string]map[string]internal.Outcome
}

var outcomes = mapset.NewSet(
	internal.OutcomePass,
	internal.OutcomeWrongAnswer,
	internal.OutcomeTimeout,
	internal.OutcomeExecutionError,
	internal.OutcomeFormatError,
)

// Load reads a suite file, resolves its candidates and builds its graphs.
// Graph references go through res; a nil res only accepts local files.
func Load(ctx context.Context, path string, res Resolver) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	baseDir := filepath.Dir(path)

	suite := &Suite{Expect: make(map[string]map[string]internal.Outcome)}

	candidateIDs := mapset.NewThreadUnsafeSet[string]()
	for i, c := range root.Candidates {
		if c.Path == "" {
			return nil, fmt.Errorf("candidate %d has no path", i+1)
		}
		p := c.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		resolved, err := tester.NewCandidates([]string{p})
		if err != nil {
			return nil, err
		}
		cand := resolved[0]
		if c.ID != "" {
			cand.ID = c.ID
		}
		if !candidateIDs.Add(cand.ID) {
			return nil, fmt.Errorf("duplicate candidate id %q", cand.ID)
		}
		suite.Candidates = append(suite.Candidates, cand)
	}

	defTimeout, err := parseTimeout(root.Defaults.Timeout)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	defMode, err := tester.ParseMode(root.Defaults.Mode)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	maxWeight := root.Defaults.MaxWeight
	if maxWeight == 0 {
		maxWeight = tester.DefaultMaxWeight
	}
	seed := root.Defaults.Seed
	if seed == 0 {
		seed = 42
	}
	rng := graph.NewRand(seed)

	scenarioIDs := mapset.NewThreadUnsafeSet[string]()
	for i, s := range root.Scenarios {
		name := s.Description
		if name == "" {
			name = fmt.Sprintf("Scenario %d", i+1)
		}
		id := s.ID
		if id == "" {
			id = slug(name)
		}
		if !scenarioIDs.Add(id) {
			return nil, fmt.Errorf("duplicate scenario id %q", id)
		}
		errorf := func(format string, args ...any) error {
			return fmt.Errorf("scenario %q: %s", id, fmt.Sprintf(format, args...))
		}

		var g *graph.Graph
		switch {
		case s.Graph != "" && s.Generate != nil:
			return nil, errorf("graph and generate are mutually exclusive")
		case s.Graph != "":
			g, err = loadGraph(ctx, res, baseDir, s.Graph)
		case s.Generate != nil:
			g, err = generate(rng, *s.Generate, maxWeight)
		default:
			return nil, errorf("either graph or generate is required")
		}
		if err != nil {
			return nil, errorf("%v", err)
		}
		if s.Sources != nil {
			g.Sources = s.Sources
			if err := g.Validate(); err != nil {
				return nil, errorf("%v", err)
			}
		}

		mode := defMode
		if s.Mode != "" {
			if mode, err = tester.ParseMode(s.Mode); err != nil {
				return nil, errorf("%v", err)
			}
		}
		timeout := defTimeout
		if s.Timeout != "" {
			if timeout, err = parseTimeout(s.Timeout); err != nil {
				return nil, errorf("%v", err)
			}
		}

		for _, e := range s.Expect {
			if !candidateIDs.Contains(e.Candidate) {
				return nil, errorf("expectation for unknown candidate %q", e.Candidate)
			}
			if !outcomes.Contains(internal.Outcome(e.Outcome)) {
				return nil, errorf("unknown outcome %q", e.Outcome)
			}
			if suite.Expect[id] == nil {
				suite.Expect[id] = make(map[string]internal.Outcome)
			}
			suite.Expect[id][e.Candidate] = internal.Outcome(e.Outcome)
		}

		suite.Scenarios = append(suite.Scenarios, tester.Scenario{
			ID:      id,
			Name:    name,
			Graph:   g,
			Mode:    mode,
			Timeout: timeout,
		})
	}
	if len(suite.Scenarios) == 0 {
		return nil, fmt.Errorf("suite has no scenarios")
	}
	return suite, nil
}

// Verify checks results against the suite's expectations and joins every
// unmet one into the returned error.
func (s *Suite) Verify(results []internal.TestResult) error {
	got := make(map[[2]string]internal.Outcome, len(results))
	for _, r := range results {
		got[[2]string{r.Scenario, r.Candidate}] = r.Outcome
	}

	var errs []error
	for _, sc := range s.Scenarios {
		for _, c := range s.Candidates {
			want, ok := s.Expect[sc.ID][c.ID]
			if !ok {
				continue
			}
			have, ok := got[[2]string{sc.ID, c.ID}]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s on %s: no result, expected %s", c.ID, sc.ID, want))
			case have != want:
				errs = append(errs, fmt.Errorf("%s on %s: got %s, expected %s", c.ID, sc.ID, have, want))
			}
		}
	}
	return errors.Join(errs...)
}

func loadGraph(ctx context.Context, res Resolver, baseDir, ref string) (*graph.Graph, error) {
	p := ref
	if !filepath.IsAbs(p) && !strings.Contains(p, "://") {
		p = filepath.Join(baseDir, p)
	}
	if res != nil {
		var err error
		if p, err = res.Await(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to fetch graph: %w", err)
		}
	}
	return graph.ReadFile(p)
}

func generate(rng *rand.Rand, spec SpecGenerate, maxWeight int64) (*graph.Graph, error) {
	profile := graph.ProfileRandom
	if spec.Profile != "" {
		var err error
		if profile, err = graph.ParseProfile(spec.Profile); err != nil {
			return nil, err
		}
	}
	if spec.MaxWeight != 0 {
		maxWeight = spec.MaxWeight
	}
	return graph.Generate(rng, graph.Params{
		Vertices:  spec.Vertices,
		Edges:     spec.Edges,
		Sources:   spec.Sources,
		MaxWeight: maxWeight,
		Profile:   profile,
	})
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", s)
	}
	return d, nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
