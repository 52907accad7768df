package respbuilder

import (
	"sync"
	"time"

	"github.com/programme-lv/pathtester/api"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/gatherer"
)

// Builder gathers run events and builds a complete api.RunReport.
type Builder struct {
	mu sync.Mutex

	runUuid    string
	systemInfo string

	started  time.Time
	finished *time.Time

	scenarios  []api.Scenario
	results    []api.TestResult
	candidates []api.CandidateStats
}

func New() *Builder {
	return &Builder{started: time.Now()}
}

// StartRun implements ResultGatherer.
func (b *Builder) StartRun(runUuid string, systemInfo string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runUuid = runUuid
	b.systemInfo = systemInfo
	b.started = time.Now()
}

// StartScenario implements ResultGatherer.
func (b *Builder) StartScenario(sc internal.ScenarioInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scenarios = append(b.scenarios, gatherer.Scenario(sc))
}

// FinishResult implements ResultGatherer. Messages are kept whole in the report.
func (b *Builder) FinishResult(res internal.TestResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, gatherer.TestResult(res, 1<<20, 1<<20))
}

// FinishRun implements ResultGatherer.
func (b *Builder) FinishRun(stats []internal.RunStatistics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.finished = &now
	b.candidates = gatherer.CandidateStats(stats)
}

// Response builds the api.RunReport from gathered data.
func (b *Builder) Response() api.RunReport {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}
	return api.RunReport{
		RunUuid:     b.runUuid,
		Scenarios:   append([]api.Scenario{}, b.scenarios...),
		Results:     append([]api.TestResult{}, b.results...),
		Candidates:  append([]api.CandidateStats{}, b.candidates...),
		StartTime:   start,
		FinishTime:  finish,
		TotalTimeMs: total,
		SystemInfo: func() *string {
			if b.systemInfo == "" {
				return nil
			}
			v := b.systemInfo
			return &v
		}(),
	}
}
