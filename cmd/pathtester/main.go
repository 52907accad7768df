package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/programme-lv/pathtester/internal/environment"
	"github.com/programme-lv/pathtester/internal/logging"
	"github.com/urfave/cli/v3"
)

func main() {
	env, err := environment.ReadEnvConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(env).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(env *environment.EnvConfig) *cli.Command {
	return &cli.Command{
		Name:  "pathtester",
		Usage: "verify shortest-path solver executables for correctness, time and memory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: env.LogLevel,
			},
		},
		Commands: []*cli.Command{
			newRunCmd(env),
			newSuiteCmd(env),
			newGenCmd(),
			newSolveCmd(env),
		},
	}
}

// newLogger builds the stderr logger from the root --log-level flag.
func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, level), nil
}
