package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/programme-lv/pathtester/internal/compare"
	"github.com/programme-lv/pathtester/internal/environment"
	"github.com/programme-lv/pathtester/internal/filestore"
	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/reference"
	"github.com/urfave/cli/v3"
)

func newSolveCmd(env *environment.EnvConfig) *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "print reference distances for a graph in the candidate output format",
		ArgsUsage: "[graph]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "parallel sources, 0 for one per CPU",
			},
			&cli.StringFlag{
				Name:  "aws-region",
				Usage: "AWS region for s3:// graphs",
				Value: env.AwsRegion,
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "where downloaded graphs are cached",
				Value: env.CacheDir,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			var g *graph.Graph
			switch src := cmd.Args().First(); {
			case cmd.Args().Len() > 1:
				return fmt.Errorf("expected at most one graph")
			case src == "" || src == "-":
				if g, err = graph.Decode(os.Stdin); err != nil {
					return fmt.Errorf("failed to decode graph: %w", err)
				}
			case filestore.IsRemote(src):
				fs, err := newFileStore(ctx, cmd, logger, strings.HasPrefix(src, "s3://"))
				if err != nil {
					return err
				}
				local, err := fs.Await(ctx, src)
				if err != nil {
					return err
				}
				if g, err = graph.ReadFile(local); err != nil {
					return err
				}
			default:
				if g, err = graph.ReadFile(src); err != nil {
					return err
				}
			}

			grid, err := reference.SolveAll(ctx, g, g.Sources, int(cmd.Int("workers")))
			if err != nil {
				return err
			}
			return compare.WriteGrid(os.Stdout, grid)
		},
	}
}
