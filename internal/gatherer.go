package internal

// ResultGatherer receives the progress of a run as it happens.
type ResultGatherer interface {
	StartRun(runUuid string, systemInfo string)
	StartScenario(sc ScenarioInfo)
	FinishResult(res TestResult)
	FinishRun(stats []RunStatistics)
}
