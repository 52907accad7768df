package behave_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/behave"
	"github.com/programme-lv/pathtester/internal/proc"
	"github.com/programme-lv/pathtester/internal/tester"
	"github.com/stretchr/testify/require"
)

const suiteToml = `
[defaults]
seed = 7
timeout = "5s"

[[candidates]]
id = "good"
path = "bin/good.sh"

[[candidates]]
id = "off-by-one"
path = "bin/off.sh"

[[scenarios]]
description = "Chain"
graph = "graphs/chain.txt"

  [[scenarios.expect]]
  candidate = "good"
  outcome = "pass"

  [[scenarios.expect]]
  candidate = "off-by-one"
  outcome = "wrong_answer"

[[scenarios]]
id = "tiny"
description = "Tiny generated"
mode = "relative"
timeout = "2s"

  [scenarios.generate]
  vertices = 6
  edges = 12
  sources = 2
  profile = "sparse"
`

func writeFile(t *testing.T, path, body string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), perm))
}

func writeSuite(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bin", "good.sh"), "#!/bin/sh\necho 0 5 12\n", 0o755)
	writeFile(t, filepath.Join(dir, "bin", "off.sh"), "#!/bin/sh\necho 0 6 13\n", 0o755)
	writeFile(t, filepath.Join(dir, "graphs", "chain.txt"), "3 2 1\n0 1 5\n1 2 7\n0\n", 0o644)
	path := filepath.Join(dir, "suite.toml")
	writeFile(t, path, suiteToml, 0o644)
	return path
}

func TestLoadSuite(t *testing.T) {
	suite, err := behave.Load(context.Background(), writeSuite(t), nil)
	require.NoError(t, err)

	require.Len(t, suite.Candidates, 2)
	require.Equal(t, "good", suite.Candidates[0].ID)
	require.True(t, filepath.IsAbs(suite.Candidates[0].Path))

	require.Len(t, suite.Scenarios, 2)
	chain := suite.Scenarios[0]
	require.Equal(t, "chain", chain.ID)
	require.Equal(t, 3, chain.Graph.N)
	require.Equal(t, tester.ModeAbsolute, chain.Mode)
	require.Equal(t, 5*time.Second, chain.Timeout)

	tiny := suite.Scenarios[1]
	require.Equal(t, "tiny", tiny.ID)
	require.Equal(t, tester.ModeRelative, tiny.Mode)
	require.Equal(t, 2*time.Second, tiny.Timeout)
	require.Len(t, tiny.Graph.Edges, 12)
	require.Len(t, tiny.Graph.Sources, 2)

	require.Equal(t, internal.OutcomeWrongAnswer, suite.Expect["chain"]["off-by-one"])
}

func TestSuiteRunsAndVerifies(t *testing.T) {
	suite, err := behave.Load(context.Background(), writeSuite(t), nil)
	require.NoError(t, err)

	// Only the chain scenario has a graph the fake candidates can answer.
	suite.Scenarios = suite.Scenarios[:1]

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tst := tester.NewTester(proc.NewRunner(t.TempDir(), logger), nil, logger)

	var results []internal.TestResult
	_, err = tst.Run(context.Background(), suite.Scenarios, suite.Candidates, collector{&results})
	require.NoError(t, err)
	require.NoError(t, suite.Verify(results))

	results[0].Outcome = internal.OutcomeTimeout
	err = suite.Verify(results)
	require.ErrorContains(t, err, "good on chain: got timeout, expected pass")

	require.ErrorContains(t, suite.Verify(nil), "no result")
}

func TestLoadRejectsInvalidSuites(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bin", "good.sh"), "#!/bin/sh\n", 0o755)

	cases := map[string]string{
		"no scenarios": `[[candidates]]
path = "bin/good.sh"`,
		"both sources": `[[scenarios]]
graph = "g.txt"
[scenarios.generate]
vertices = 3`,
		"neither source": `[[scenarios]]
description = "empty"`,
		"unknown outcome": `[[candidates]]
path = "bin/good.sh"
[[scenarios]]
[scenarios.generate]
vertices = 3
edges = 2
[[scenarios.expect]]
candidate = "good.sh"
outcome = "great"`,
		"unknown candidate": `[[scenarios]]
[scenarios.generate]
vertices = 3
[[scenarios.expect]]
candidate = "ghost"
outcome = "pass"`,
		"bad sources": `[[scenarios]]
sources = [9]
[scenarios.generate]
vertices = 3`,
		"repeated sources": `[[scenarios]]
sources = [1, 1]
[scenarios.generate]
vertices = 3`,
		"bad mode": `[defaults]
mode = "vibes"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "suite.toml")
			writeFile(t, path, body, 0o644)
			_, err := behave.Load(context.Background(), path, nil)
			require.Error(t, err)
		})
	}
}

type collector struct{ results *[]internal.TestResult }

func (collector) StartRun(string, string)              {}
func (collector) StartScenario(internal.ScenarioInfo)  {}
func (c collector) FinishResult(r internal.TestResult) { *c.results = append(*c.results, r) }
func (collector) FinishRun([]internal.RunStatistics)   {}
