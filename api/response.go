package api

// Scenario describes one graph instance of a run
type Scenario struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
	Sources  int    `json:"sources"`
	Mode     string `json:"mode"`
}

// TestResult represents the result of one candidate on one scenario
type TestResult struct {
	Candidate string `json:"candidate"`
	Scenario  string `json:"scenario"`

	// pass, wrong_answer, timeout, execution_error or format_error
	Outcome string `json:"outcome"`
	Passed  bool   `json:"passed"`

	// Diagnostic message, trimmed
	Message *string `json:"message,omitempty"`

	WallMillis    int64 `json:"wall_ms"`
	MemoryKiBytes int64 `json:"mem_kib"`
	ExitCode      int   `json:"exit_code"`

	// Soft warning; does not affect Passed
	MemoryExceeded bool `json:"memory_exceeded"`
	// Set on the candidate whose output others were compared against
	Reference bool `json:"reference,omitempty"`
}

// CandidateStats is the aggregate of one candidate over a run
type CandidateStats struct {
	Candidate string `json:"candidate"`
	Path      string `json:"path"`

	Passed   int     `json:"passed"`
	Total    int     `json:"total"`
	PassRate float64 `json:"pass_rate"`

	AvgWallMillis  int64 `json:"avg_wall_ms"`
	PeakMemKiBytes int64 `json:"peak_mem_kib"`

	MemoryCeilingKiBytes int64 `json:"memory_ceiling_kib"`
	WithinCeiling        bool  `json:"within_ceiling"`
}

// RunReport is a complete, non-streaming report of a run
type RunReport struct {
	RunUuid string `json:"run_uuid"`

	Scenarios  []Scenario       `json:"scenarios"`
	Results    []TestResult     `json:"results"`
	Candidates []CandidateStats `json:"candidates"`

	// Execution metadata
	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`

	// System information
	SystemInfo *string `json:"system_info,omitempty"`
}
