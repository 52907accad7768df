package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/graph"
)

// Mode selects what candidate output is checked against.
type Mode string

const (
	// ModeAbsolute compares with distances from the reference solver.
	ModeAbsolute Mode = "absolute"
	// ModeRelative compares with the first well-formed output of the scenario.
	ModeRelative Mode = "relative"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAbsolute, ModeRelative:
		return Mode(s), nil
	case "":
		return ModeAbsolute, nil
	}
	return "", fmt.Errorf("unknown comparison mode %q (want %q or %q)", s, ModeAbsolute, ModeRelative)
}

type Scenario struct {
	ID    string
	Name  string
	Graph *graph.Graph
	Mode  Mode
	// Timeout overrides the configured wall time limit when positive.
	Timeout time.Duration
}

func (s Scenario) Info() internal.ScenarioInfo {
	mode := s.Mode
	if mode == "" {
		mode = ModeAbsolute
	}
	return internal.ScenarioInfo{
		ID:       s.ID,
		Name:     s.Name,
		Vertices: s.Graph.N,
		Edges:    len(s.Graph.Edges),
		Sources:  len(s.Graph.Sources),
		Mode:     string(mode),
	}
}

// Candidate is a solver executable under test.
type Candidate struct {
	ID   string
	Path string
}

// NewCandidates resolves paths to executables. Repeated paths are dropped; IDs
// are base names, suffixed with a counter when two candidates share one.
func NewCandidates(paths []string) ([]Candidate, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no candidate executables given")
	}

	seenPaths := mapset.NewThreadUnsafeSet[string]()
	seenIDs := mapset.NewThreadUnsafeSet[string]()
	res := make([]Candidate, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		if !seenPaths.Add(abs) {
			continue
		}

		fi, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", p, err)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("candidate %s is not a regular file", p)
		}
		if fi.Mode().Perm()&0o111 == 0 {
			return nil, fmt.Errorf("candidate %s is not executable", p)
		}

		base := filepath.Base(abs)
		id := base
		for i := 2; !seenIDs.Add(id); i++ {
			id = fmt.Sprintf("%s#%d", base, i)
		}
		res = append(res, Candidate{ID: id, Path: abs})
	}
	return res, nil
}
