package tester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/compare"
	"github.com/programme-lv/pathtester/internal/proc"
	"github.com/programme-lv/pathtester/internal/reference"
)

// Run executes every candidate against every scenario, one pair at a time, and
// reports progress to gath. A failing pair is recorded and the run moves on; only
// cancellation of ctx stops it early, in which case the pair that was running is
// dropped and the statistics gathered so far are still finalized and returned
// along with ctx's error.
func (t *Tester) Run(
	ctx context.Context,
	scenarios []Scenario,
	candidates []Candidate,
	gath internal.ResultGatherer,
) ([]internal.RunStatistics, error) {
	runUuid := uuid.NewString()
	logger := t.logger.With(slog.String("run", runUuid))
	gath.StartRun(runUuid, t.systemInfo)

	stats := make([]internal.RunStatistics, len(candidates))
	for i, c := range candidates {
		stats[i] = internal.RunStatistics{
			Candidate:     c.ID,
			Path:          c.Path,
			MemoryCeiling: t.cfg.MemoryCeilingBytes,
		}
	}
	registry := compare.NewRegistry()

	var runErr error
scenarios:
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		info := sc.Info()
		gath.StartScenario(info)
		scLogger := logger.With(slog.String("scenario", sc.ID))

		var expected [][]int64
		var refErr error
		if info.Mode == string(ModeAbsolute) {
			expected, refErr = reference.SolveAll(ctx, sc.Graph, sc.Graph.Sources, t.cfg.ReferenceWorkers)
			if refErr != nil {
				scLogger.Error("reference computation failed", slog.Any("error", refErr))
			}
		}

		for i, c := range candidates {
			if err := ctx.Err(); err != nil {
				runErr = err
				break scenarios
			}
			var res internal.TestResult
			if refErr != nil {
				res = internal.TestResult{
					Candidate: c.ID,
					Scenario:  sc.ID,
					Outcome:   internal.OutcomeExecutionError,
					Message:   refErr.Error(),
				}
			} else {
				var interrupted bool
				res, interrupted = t.runPair(ctx, scLogger, sc, c, expected, registry)
				if interrupted {
					scLogger.Warn("run interrupted, dropping unfinished result", slog.String("candidate", c.ID))
					runErr = ctx.Err()
					break scenarios
				}
			}
			stats[i].Add(res)
			gath.FinishResult(res)
		}
	}

	gath.FinishRun(stats)
	return stats, runErr
}

func (t *Tester) runPair(
	ctx context.Context,
	logger *slog.Logger,
	sc Scenario,
	c Candidate,
	expected [][]int64,
	registry *compare.Registry,
) (res internal.TestResult, interrupted bool) {
	logger = logger.With(slog.String("candidate", c.ID))
	res = internal.TestResult{Candidate: c.ID, Scenario: sc.ID}

	constraints := t.cfg.Constraints
	if sc.Timeout > 0 {
		constraints.WallTimeLimit = sc.Timeout
	}

	data, err := t.runner.Execute(ctx, c.Path, sc.Graph, &constraints)
	// A cancelled run kills the candidate; that is not the candidate's fault.
	if ctx.Err() != nil {
		return res, true
	}
	if data != nil {
		res.Elapsed = data.WallTime
		res.PeakMemoryBytes = data.PeakRssBytes
		res.ExitCode = data.ExitCode
		res.MemoryExceeded = t.cfg.MemoryCeilingBytes > 0 && data.PeakRssBytes > t.cfg.MemoryCeilingBytes
	}
	if res.MemoryExceeded {
		logger.Warn("memory ceiling exceeded",
			slog.Uint64("peak", res.PeakMemoryBytes),
			slog.Uint64("ceiling", t.cfg.MemoryCeilingBytes))
	}

	var exitErr *proc.ExitError
	switch {
	case errors.Is(err, proc.ErrTimeout):
		res.Outcome = internal.OutcomeTimeout
		res.Message = fmt.Sprintf("no result within %s", constraints.WallTimeLimit)
	case errors.As(err, &exitErr):
		res.Outcome = internal.OutcomeExecutionError
		res.Message = exitMessage(exitErr)
	case err != nil:
		res.Outcome = internal.OutcomeExecutionError
		res.Message = err.Error()
	default:
		var cmpErr error
		if expected != nil {
			cmpErr = compare.CheckAbsolute(data.Stdout, sc.Graph.Sources, expected, sc.Graph.N)
		} else {
			res.Reference, cmpErr = registry.CheckRelative(sc.ID, c.ID, data.Stdout, sc.Graph.Sources, sc.Graph.N)
		}
		res.Outcome, res.Message = classify(cmpErr)
	}

	logger.Info("candidate checked",
		slog.String("outcome", string(res.Outcome)),
		slog.Duration("elapsed", res.Elapsed),
		slog.Uint64("peak_rss", res.PeakMemoryBytes))
	return res, false
}

// classify maps a comparison error to an outcome. Anything that is not a format
// problem means the distances disagree.
func classify(err error) (internal.Outcome, string) {
	if err == nil {
		return internal.OutcomePass, ""
	}
	var fe *compare.FormatError
	if errors.As(err, &fe) {
		return internal.OutcomeFormatError, fe.Error()
	}
	return internal.OutcomeWrongAnswer, err.Error()
}

func exitMessage(e *proc.ExitError) string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return e.Error()
	}
	return e.Error() + ": " + stderr
}
