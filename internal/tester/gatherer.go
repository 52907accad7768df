package tester

import "github.com/programme-lv/pathtester/internal"

// MultiGatherer forwards every event to each of its gatherers in order.
type MultiGatherer []internal.ResultGatherer

func (m MultiGatherer) StartRun(runUuid string, systemInfo string) {
	for _, g := range m {
		g.StartRun(runUuid, systemInfo)
	}
}

func (m MultiGatherer) StartScenario(sc internal.ScenarioInfo) {
	for _, g := range m {
		g.StartScenario(sc)
	}
}

func (m MultiGatherer) FinishResult(res internal.TestResult) {
	for _, g := range m {
		g.FinishResult(res)
	}
}

func (m MultiGatherer) FinishRun(stats []internal.RunStatistics) {
	for _, g := range m {
		g.FinishRun(stats)
	}
}
