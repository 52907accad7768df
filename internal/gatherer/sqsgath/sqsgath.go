package sqsgath

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/pathtester/api"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/gatherer"
)

// Sender is the part of *sqs.Client the gatherer uses.
type Sender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type sqsResQueueGatherer struct {
	sqsClient Sender
	queueUrl  string
	runUuid   string
	logger    *slog.Logger
}

func New(client Sender, queueUrl string, logger *slog.Logger) *sqsResQueueGatherer {
	return &sqsResQueueGatherer{
		sqsClient: client,
		queueUrl:  queueUrl,
		logger:    logger.With(slog.String("queue", queueUrl)),
	}
}

// NewFromConfig loads the default AWS configuration for region and sends to queueUrl.
func NewFromConfig(ctx context.Context, region string, queueUrl string, logger *slog.Logger) (*sqsResQueueGatherer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(sqs.NewFromConfig(cfg), queueUrl, logger), nil
}

// StartRun implements ResultGatherer.
func (s *sqsResQueueGatherer) StartRun(runUuid string, systemInfo string) {
	s.runUuid = runUuid
	s.send(api.NewStartRun(runUuid, systemInfo))
}

// StartScenario implements ResultGatherer.
func (s *sqsResQueueGatherer) StartScenario(sc internal.ScenarioInfo) {
	s.send(api.NewStartScenario(s.runUuid, gatherer.Scenario(sc)))
}

// FinishResult implements ResultGatherer.
func (s *sqsResQueueGatherer) FinishResult(res internal.TestResult) {
	s.send(api.NewFinishResult(s.runUuid,
		gatherer.TestResult(res, api.MaxMessageHeight, api.MaxMessageWidth)))
}

// FinishRun implements ResultGatherer.
func (s *sqsResQueueGatherer) FinishRun(stats []internal.RunStatistics) {
	s.send(api.NewFinishRun(s.runUuid, gatherer.CandidateStats(stats)))
}

func (s *sqsResQueueGatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", slog.Any("error", err))
		return
	}

	_, err = s.sqsClient.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(b)),
	})
	if err != nil {
		s.logger.Error("failed to send message", slog.Any("error", err))
	}
}
