package internal

import "time"

// RunData is what one candidate execution observably produced.
type RunData struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	// ExitSignal is set when the process was terminated by a signal.
	ExitSignal *int

	WallTime time.Duration
	// PeakRssBytes is the largest sampled resident set of the process tree.
	PeakRssBytes uint64
	RssSamples   int

	TimedOut bool
}

// Outcome classifies one (scenario, candidate) execution.
type Outcome string

const (
	OutcomePass           Outcome = "pass"
	OutcomeWrongAnswer    Outcome = "wrong_answer"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeExecutionError Outcome = "execution_error"
	OutcomeFormatError    Outcome = "format_error"
)

func (o Outcome) Passed() bool { return o == OutcomePass }

// TestResult is created once per (scenario, candidate) pair and not mutated afterwards.
type TestResult struct {
	Candidate string
	Scenario  string

	Outcome Outcome
	Message string

	Elapsed         time.Duration
	PeakMemoryBytes uint64
	ExitCode        int

	// MemoryExceeded is a soft warning and never changes Outcome.
	MemoryExceeded bool
	// Reference marks the candidate whose output became the comparison
	// baseline of a relative-mode scenario.
	Reference bool
}

// ScenarioInfo describes a scenario to result gatherers.
type ScenarioInfo struct {
	ID       string
	Name     string
	Vertices int
	Edges    int
	Sources  int
	Mode     string
}

// RunStatistics aggregates the results of one candidate over a run.
type RunStatistics struct {
	Candidate string
	Path      string

	Passed int
	Total  int

	TotalTime     time.Duration
	MaxPeakMemory uint64

	MemoryCeiling     uint64
	CeilingViolations int
}

func (s *RunStatistics) Add(r TestResult) {
	s.Total++
	if r.Outcome.Passed() {
		s.Passed++
	}
	s.TotalTime += r.Elapsed
	s.MaxPeakMemory = max(s.MaxPeakMemory, r.PeakMemoryBytes)
	if r.MemoryExceeded {
		s.CeilingViolations++
	}
}

func (s RunStatistics) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}

func (s RunStatistics) AverageTime() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Total)
}

func (s RunStatistics) WithinCeiling() bool {
	return s.CeilingViolations == 0
}
