package natsgath

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/pathtester/api"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/gatherer"
)

// Publisher is the part of *nats.Conn the gatherer uses.
type Publisher interface {
	Publish(subj string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

type natsGatherer struct {
	nc      Publisher
	subject string
	runUuid string
	logger  *slog.Logger
}

// New creates a gatherer that streams run events as JSON to the given subject.
func New(nc Publisher, subject string, logger *slog.Logger) *natsGatherer {
	return &natsGatherer{
		nc:      nc,
		subject: subject,
		logger:  logger.With(slog.String("subject", subject)),
	}
}

// StartRun implements ResultGatherer.
func (s *natsGatherer) StartRun(runUuid string, systemInfo string) {
	s.runUuid = runUuid
	s.send(api.NewStartRun(runUuid, systemInfo))
}

// StartScenario implements ResultGatherer.
func (s *natsGatherer) StartScenario(sc internal.ScenarioInfo) {
	s.send(api.NewStartScenario(s.runUuid, gatherer.Scenario(sc)))
}

// FinishResult implements ResultGatherer.
func (s *natsGatherer) FinishResult(res internal.TestResult) {
	s.send(api.NewFinishResult(s.runUuid,
		gatherer.TestResult(res, api.MaxMessageHeight, api.MaxMessageWidth)))
}

// FinishRun implements ResultGatherer.
func (s *natsGatherer) FinishRun(stats []internal.RunStatistics) {
	s.send(api.NewFinishRun(s.runUuid, gatherer.CandidateStats(stats)))
}

func (s *natsGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", slog.Any("error", err))
		return
	}

	if err := s.nc.Publish(s.subject, b); err != nil {
		s.logger.Error("failed to publish message to NATS", slog.Any("error", err))
	}
}
