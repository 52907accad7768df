package sqsgath_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/pathtester/api"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/gatherer/sqsgath"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeQueue) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

func TestSendsEventsToQueue(t *testing.T) {
	q := &fakeQueue{}
	g := sqsgath.New(q, "https://sqs.example/queue", slog.New(slog.NewTextHandler(io.Discard, nil)))

	g.StartRun("run-7", "")
	g.StartScenario(internal.ScenarioInfo{ID: "chain", Name: "Chain", Mode: "relative"})
	g.FinishResult(internal.TestResult{Candidate: "a", Scenario: "chain", Outcome: internal.OutcomePass, Reference: true})
	g.FinishRun(nil)

	require.Len(t, q.inputs, 4)
	types := make([]api.MsgType, 0, 4)
	for _, in := range q.inputs {
		require.Equal(t, "https://sqs.example/queue", aws.ToString(in.QueueUrl))
		var h api.Header
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &h))
		require.Equal(t, "run-7", h.RunUuid)
		types = append(types, h.MsgType)
	}
	require.Equal(t, []api.MsgType{api.StartRunMsg, api.StartScenarioMsg, api.FinishResultMsg, api.FinishRunMsg}, types)

	var sc api.StartScenario
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(q.inputs[1].MessageBody)), &sc))
	require.Equal(t, "relative", sc.Scenario.Mode)
}
