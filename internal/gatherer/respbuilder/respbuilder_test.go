package respbuilder_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/gatherer/respbuilder"
	"github.com/stretchr/testify/require"
)

func TestBuilderCollectsRun(t *testing.T) {
	b := respbuilder.New()
	b.StartRun("run-1", "")
	b.StartScenario(internal.ScenarioInfo{ID: "chain", Name: "Chain", Vertices: 3, Edges: 2, Sources: 1, Mode: "absolute"})
	b.FinishResult(internal.TestResult{
		Candidate:       "a",
		Scenario:        "chain",
		Outcome:         internal.OutcomePass,
		Elapsed:         1500 * time.Millisecond,
		PeakMemoryBytes: 4 << 20,
		MemoryExceeded:  true,
	})
	b.FinishResult(internal.TestResult{
		Candidate: "b",
		Scenario:  "chain",
		Outcome:   internal.OutcomeWrongAnswer,
		Message:   "wrong distance from 0 to 2: expected 12, got 13",
	})

	stats := internal.RunStatistics{Candidate: "a", Path: "/bin/a", MemoryCeiling: 1 << 20}
	stats.Add(internal.TestResult{Outcome: internal.OutcomePass, Elapsed: time.Second, PeakMemoryBytes: 4 << 20, MemoryExceeded: true})
	b.FinishRun([]internal.RunStatistics{stats})

	resp := b.Response()
	require.Equal(t, "run-1", resp.RunUuid)
	require.Nil(t, resp.SystemInfo)
	require.Len(t, resp.Scenarios, 1)
	require.Equal(t, 3, resp.Scenarios[0].Vertices)

	require.Len(t, resp.Results, 2)
	require.True(t, resp.Results[0].Passed)
	require.Equal(t, int64(1500), resp.Results[0].WallMillis)
	require.Equal(t, int64(4096), resp.Results[0].MemoryKiBytes)
	require.True(t, resp.Results[0].MemoryExceeded)
	require.Nil(t, resp.Results[0].Message)
	require.False(t, resp.Results[1].Passed)
	require.Equal(t, "wrong_answer", resp.Results[1].Outcome)
	require.NotNil(t, resp.Results[1].Message)

	require.Len(t, resp.Candidates, 1)
	require.Equal(t, 100.0, resp.Candidates[0].PassRate)
	require.False(t, resp.Candidates[0].WithinCeiling)
	require.Equal(t, int64(1024), resp.Candidates[0].MemoryCeilingKiBytes)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"run_uuid":"run-1"`)
	require.Contains(t, string(raw), `"outcome":"wrong_answer"`)
}
