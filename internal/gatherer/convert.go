// Package gatherer converts run events into the api wire types shared by the
// streaming and report gatherers.
package gatherer

import (
	"github.com/programme-lv/pathtester/api"
	"github.com/programme-lv/pathtester/internal"
)

func Scenario(sc internal.ScenarioInfo) api.Scenario {
	return api.Scenario{
		ID:       sc.ID,
		Name:     sc.Name,
		Vertices: sc.Vertices,
		Edges:    sc.Edges,
		Sources:  sc.Sources,
		Mode:     sc.Mode,
	}
}

// TestResult converts res, trimming its message to maxHeight x maxWidth.
func TestResult(res internal.TestResult, maxHeight, maxWidth int) api.TestResult {
	tr := api.TestResult{
		Candidate:      res.Candidate,
		Scenario:       res.Scenario,
		Outcome:        string(res.Outcome),
		Passed:         res.Outcome.Passed(),
		WallMillis:     res.Elapsed.Milliseconds(),
		MemoryKiBytes:  int64(res.PeakMemoryBytes >> 10),
		ExitCode:       res.ExitCode,
		MemoryExceeded: res.MemoryExceeded,
		Reference:      res.Reference,
	}
	if res.Message != "" {
		msg := api.TrimStrToRect(res.Message, maxHeight, maxWidth)
		tr.Message = &msg
	}
	return tr
}

func CandidateStats(stats []internal.RunStatistics) []api.CandidateStats {
	res := make([]api.CandidateStats, 0, len(stats))
	for _, s := range stats {
		res = append(res, api.CandidateStats{
			Candidate:            s.Candidate,
			Path:                 s.Path,
			Passed:               s.Passed,
			Total:                s.Total,
			PassRate:             s.PassRate(),
			AvgWallMillis:        s.AverageTime().Milliseconds(),
			PeakMemKiBytes:       int64(s.MaxPeakMemory >> 10),
			MemoryCeilingKiBytes: int64(s.MemoryCeiling >> 10),
			WithinCeiling:        s.WithinCeiling(),
		})
	}
	return res
}
