package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

// Streaming message type constants
const (
	StartRunMsg      MsgType = "run_start"
	StartScenarioMsg MsgType = "scenario_start"
	FinishResultMsg  MsgType = "result"
	FinishRunMsg     MsgType = "run_finish"
)

// Message size constraints for streaming
const (
	MaxMessageHeight = 40
	MaxMessageWidth  = 80
)

// Header is the common header for all streaming messages
type Header struct {
	RunUuid string  `json:"run_uuid"`
	MsgType MsgType `json:"msg_type"`
}

// StartRun message sent when a run begins
type StartRun struct {
	Header
	SystemInfo  string `json:"system_info"`
	StartedTime string `json:"started_time"`
}

// StartScenario message sent before the candidates of a scenario are run
type StartScenario struct {
	Header
	Scenario Scenario `json:"scenario"`
}

// FinishResult message sent for every (scenario, candidate) pair
type FinishResult struct {
	Header
	Result TestResult `json:"result"`
}

// FinishRun message sent with the final per-candidate statistics
type FinishRun struct {
	Header
	Candidates []CandidateStats `json:"candidates"`
}

func NewHeader(runUuid string, msgType MsgType) Header {
	return Header{
		RunUuid: runUuid,
		MsgType: msgType,
	}
}

func NewStartRun(runUuid, systemInfo string) StartRun {
	return StartRun{
		Header:      NewHeader(runUuid, StartRunMsg),
		SystemInfo:  systemInfo,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartScenario(runUuid string, sc Scenario) StartScenario {
	return StartScenario{
		Header:   NewHeader(runUuid, StartScenarioMsg),
		Scenario: sc,
	}
}

func NewFinishResult(runUuid string, res TestResult) FinishResult {
	return FinishResult{
		Header: NewHeader(runUuid, FinishResultMsg),
		Result: res,
	}
}

func NewFinishRun(runUuid string, candidates []CandidateStats) FinishRun {
	return FinishRun{
		Header:     NewHeader(runUuid, FinishRunMsg),
		Candidates: candidates,
	}
}
