package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/environment"
	"github.com/programme-lv/pathtester/internal/filestore"
	"github.com/programme-lv/pathtester/internal/gatherer/natsgath"
	"github.com/programme-lv/pathtester/internal/gatherer/respbuilder"
	"github.com/programme-lv/pathtester/internal/gatherer/sqsgath"
	"github.com/programme-lv/pathtester/internal/gatherer/termgath"
	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/proc"
	"github.com/programme-lv/pathtester/internal/tester"
	"github.com/urfave/cli/v3"
)

// harnessFlags are shared by every command that runs candidates.
func harnessFlags(env *environment.EnvConfig) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "wall time limit per candidate run",
			Value: env.Timeout,
		},
		&cli.IntFlag{
			Name:  "memory-ceiling",
			Usage: fmt.Sprintf("soft memory ceiling in MiB, 0 disables (default %d)", env.MemoryCeilingMiB),
		},
		&cli.DurationFlag{
			Name:  "sample-interval",
			Usage: "resident memory sampling interval",
			Value: env.SampleInterval,
		},
		&cli.StringFlag{
			Name:  "transport",
			Usage: "how candidates receive the graph: file or stdin",
			Value: string(proc.TransportFile),
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "input layout given to candidates: canonical or trailing-k",
			Value: string(graph.LayoutCanonical),
		},
		&cli.IntFlag{
			Name:  "reference-workers",
			Usage: "parallel reference computations, 0 for one per CPU",
		},
		&cli.StringFlag{
			Name:  "json",
			Usage: "write the full JSON report to this file, - for stdout",
		},
		&cli.StringFlag{
			Name:  "nats-url",
			Usage: "stream results to this NATS server",
			Value: env.NatsURL,
		},
		&cli.StringFlag{
			Name:  "nats-subject",
			Usage: "NATS subject for streamed results",
			Value: env.NatsSubject,
		},
		&cli.StringFlag{
			Name:  "sqs-url",
			Usage: "stream results to this SQS queue",
			Value: env.SqsURL,
		},
		&cli.StringFlag{
			Name:  "aws-region",
			Usage: "AWS region for SQS and S3",
			Value: env.AwsRegion,
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "where downloaded graphs are cached",
			Value: env.CacheDir,
		},
	}
}

func testerConfig(cmd *cli.Command, env *environment.EnvConfig) (*tester.Config, error) {
	cfg := tester.DefaultConfig()

	ceilingMiB := env.MemoryCeilingMiB
	if cmd.IsSet("memory-ceiling") {
		v := cmd.Int("memory-ceiling")
		if v < 0 {
			return nil, fmt.Errorf("memory ceiling must not be negative")
		}
		ceilingMiB = uint64(v)
	}
	cfg.MemoryCeilingBytes = ceilingMiB << 20
	cfg.ReferenceWorkers = int(cmd.Int("reference-workers"))

	if cmd.Duration("timeout") <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	cfg.Constraints.WallTimeLimit = cmd.Duration("timeout")
	cfg.Constraints.SampleInterval = cmd.Duration("sample-interval")

	var err error
	if cfg.Constraints.Transport, err = proc.ParseTransport(cmd.String("transport")); err != nil {
		return nil, err
	}
	if cfg.Constraints.Layout, err = graph.ParseLayout(cmd.String("layout")); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newGatherer wires the terminal report plus whichever sinks the flags enable.
// finish must be called after the run to flush them.
func newGatherer(
	ctx context.Context,
	cmd *cli.Command,
	logger *slog.Logger,
) (gath tester.MultiGatherer, finish func() error, err error) {
	gaths := tester.MultiGatherer{termgath.New(os.Stdout)}
	var closers []func() error

	var report *respbuilder.Builder
	if cmd.String("json") != "" {
		report = respbuilder.New()
		gaths = append(gaths, report)
	}

	if url := cmd.String("nats-url"); url != "" {
		nc, err := nats.Connect(url, nats.Name("pathtester"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		gaths = append(gaths, natsgath.New(nc, cmd.String("nats-subject"), logger))
		closers = append(closers, nc.Drain)
	}

	if url := cmd.String("sqs-url"); url != "" {
		g, err := sqsgath.NewFromConfig(ctx, cmd.String("aws-region"), url, logger)
		if err != nil {
			return nil, nil, err
		}
		gaths = append(gaths, g)
	}

	finish = func() error {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close result stream", slog.Any("error", err))
			}
		}
		if report == nil {
			return nil
		}
		return writeReport(cmd.String("json"), report)
	}
	return gaths, finish, nil
}

func writeReport(path string, b *respbuilder.Builder) error {
	out, err := json.MarshalIndent(b.Response(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	out = append(out, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newFileStore creates the graph cache. The S3 client is only set up when withS3 is set.
func newFileStore(
	ctx context.Context,
	cmd *cli.Command,
	logger *slog.Logger,
	withS3 bool,
) (*filestore.FileStore, error) {
	var opts []filestore.Option
	if withS3 {
		client, err := filestore.NewS3Client(ctx, cmd.String("aws-region"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, filestore.WithS3(client))
	}
	return filestore.New(cmd.String("cache-dir"), logger, opts...)
}

// runTester runs candidates over scenarios with the harness flags of cmd. extra
// gatherers receive the same events as the configured sinks.
func runTester(
	ctx context.Context,
	cmd *cli.Command,
	env *environment.EnvConfig,
	logger *slog.Logger,
	scenarios []tester.Scenario,
	candidates []tester.Candidate,
	extra ...internal.ResultGatherer,
) ([]internal.RunStatistics, error) {
	cfg, err := testerConfig(cmd, env)
	if err != nil {
		return nil, err
	}
	gath, finish, err := newGatherer(ctx, cmd, logger)
	if err != nil {
		return nil, err
	}

	t := tester.NewTester(proc.NewRunner("", logger), cfg, logger)
	stats, runErr := t.Run(ctx, scenarios, candidates, append(gath, extra...))
	if err := finish(); err != nil {
		return nil, errors.Join(runErr, err)
	}
	return stats, runErr
}
