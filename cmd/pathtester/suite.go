package main

import (
	"context"
	"fmt"

	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/behave"
	"github.com/programme-lv/pathtester/internal/environment"
	"github.com/urfave/cli/v3"
)

func newSuiteCmd(env *environment.EnvConfig) *cli.Command {
	return &cli.Command{
		Name:      "suite",
		Usage:     "run a TOML scenario suite and check its expected outcomes",
		ArgsUsage: "<suite.toml>",
		Flags:     harnessFlags(env),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one suite file")
			}

			// Graph references are only known once the suite is parsed.
			fs, err := newFileStore(ctx, cmd, logger, true)
			if err != nil {
				return err
			}
			suite, err := behave.Load(ctx, cmd.Args().First(), fs)
			if err != nil {
				return err
			}

			var results resultLog
			if _, err := runTester(ctx, cmd, env, logger, suite.Scenarios, suite.Candidates, &results); err != nil {
				return err
			}
			if err := suite.Verify(results); err != nil {
				return fmt.Errorf("suite expectations not met:\n%w", err)
			}
			logger.Info("all suite expectations met")
			return nil
		},
	}
}

// resultLog keeps every result of a run.
type resultLog []internal.TestResult

func (*resultLog) StartRun(string, string)                {}
func (*resultLog) StartScenario(internal.ScenarioInfo)    {}
func (r *resultLog) FinishResult(res internal.TestResult) { *r = append(*r, res) }
func (*resultLog) FinishRun([]internal.RunStatistics)     {}
