package termgath

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/pathtester/internal"
)

const rule = "================================================================================"

// TerminalGatherer prints a human readable per-scenario report and a summary
// per candidate.
type TerminalGatherer struct {
	w         io.Writer
	StartedAt time.Time

	ok   *color.Color
	fail *color.Color
	warn *color.Color
	bold *color.Color
}

func New(w io.Writer) *TerminalGatherer {
	return &TerminalGatherer{
		w:         w,
		StartedAt: time.Now(),
		ok:        color.New(color.FgGreen),
		fail:      color.New(color.FgRed),
		warn:      color.New(color.FgYellow),
		bold:      color.New(color.Bold),
	}
}

func (t *TerminalGatherer) StartRun(runUuid string, systemInfo string) {
	t.StartedAt = time.Now()
	fmt.Fprintln(t.w, rule)
	t.bold.Fprintln(t.w, "SHORTEST PATH SOLVER TESTER")
	fmt.Fprintln(t.w, rule)
	fmt.Fprintf(t.w, "Run: %s\n", runUuid)
	if systemInfo != "" {
		fmt.Fprintln(t.w, systemInfo)
	}
}

func (t *TerminalGatherer) StartScenario(sc internal.ScenarioInfo) {
	fmt.Fprintf(t.w, "\n--- Scenario: %s ---\n", sc.Name)
	fmt.Fprintf(t.w, "Graph: %d vertices, %d edges, %d sources (%s)\n", sc.Vertices, sc.Edges, sc.Sources, sc.Mode)
}

func (t *TerminalGatherer) FinishResult(res internal.TestResult) {
	if res.Outcome.Passed() {
		ref := ""
		if res.Reference {
			ref = " (reference output)"
		}
		t.ok.Fprintf(t.w, "  [✓] %s%s\n", res.Candidate, ref)
	} else {
		msg := string(res.Outcome)
		if res.Message != "" {
			msg += ": " + firstLine(res.Message)
		}
		t.fail.Fprintf(t.w, "  [✗] %s - %s\n", res.Candidate, msg)
	}
	fmt.Fprintf(t.w, "      Time: %.3fs, Memory: %s\n", res.Elapsed.Seconds(), mib(res.PeakMemoryBytes))
	if res.MemoryExceeded {
		t.warn.Fprintln(t.w, "      ⚠ Memory ceiling exceeded")
	}
}

func (t *TerminalGatherer) FinishRun(stats []internal.RunStatistics) {
	fmt.Fprintln(t.w)
	fmt.Fprintln(t.w, rule)
	t.bold.Fprintln(t.w, "SUMMARY")
	fmt.Fprintln(t.w, rule)

	for _, s := range stats {
		fmt.Fprintf(t.w, "\n%s:\n", s.Candidate)
		passed := t.ok
		if s.Passed != s.Total {
			passed = t.fail
		}
		passed.Fprintf(t.w, "  Tests passed: %d/%d (%.1f%%)\n", s.Passed, s.Total, s.PassRate())
		fmt.Fprintf(t.w, "  Average time: %.3fs\n", s.AverageTime().Seconds())
		fmt.Fprintf(t.w, "  Peak memory: %s\n", mib(s.MaxPeakMemory))
		switch {
		case s.MemoryCeiling == 0:
		case s.WithinCeiling():
			t.ok.Fprintf(t.w, "  ✓ Memory ceiling satisfied (%s)\n", mib(s.MemoryCeiling))
		default:
			t.warn.Fprintf(t.w, "  ✗ Memory ceiling violated in %d of %d scenarios (%s)\n",
				s.CeilingViolations, s.Total, mib(s.MemoryCeiling))
		}
	}

	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(t.w, "\n== Run finished in %s ==\n", dur)
}

func mib(b uint64) string {
	return fmt.Sprintf("%.1fMiB", float64(b)/(1<<20))
}

func firstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	if found && strings.TrimSpace(rest) != "" {
		return line + " [...]"
	}
	return line
}
