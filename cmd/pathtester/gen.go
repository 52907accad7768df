package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/tester"
	"github.com/urfave/cli/v3"
)

func newGenCmd() *cli.Command {
	return &cli.Command{
		Name:  "gen",
		Usage: "write a generated graph; names ending in .zst are zstd-compressed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file, - for stdout",
				Value:   "-",
			},
			&cli.IntFlag{Name: "vertices", Usage: "vertex count", Value: 1000},
			&cli.IntFlag{Name: "edges", Usage: "edge count", Value: 5000},
			&cli.IntFlag{Name: "sources", Usage: "source count", Value: 10},
			&cli.IntFlag{Name: "max-weight", Usage: "largest edge weight", Value: tester.DefaultMaxWeight},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "density profile: random, sparse or dense",
				Value: string(graph.ProfileRandom),
			},
			&cli.IntFlag{Name: "seed", Usage: "random seed", Value: 42},
			&cli.StringFlag{
				Name:  "layout",
				Usage: "canonical or trailing-k",
				Value: string(graph.LayoutCanonical),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			profile, err := graph.ParseProfile(cmd.String("profile"))
			if err != nil {
				return err
			}
			layout, err := graph.ParseLayout(cmd.String("layout"))
			if err != nil {
				return err
			}
			p := graph.Params{
				Vertices:  int(cmd.Int("vertices")),
				Edges:     int(cmd.Int("edges")),
				Sources:   int(cmd.Int("sources")),
				MaxWeight: int64(cmd.Int("max-weight")),
				Profile:   profile,
			}
			if p.Capped() {
				logger.Warn("edge count capped",
					slog.Int("requested", p.Edges),
					slog.Int("max", graph.MaxEdges(p.Vertices)))
			}

			g, err := graph.Generate(graph.NewRand(uint64(cmd.Int("seed"))), p)
			if err != nil {
				return err
			}
			if out := cmd.String("output"); out != "-" {
				return graph.WriteFile(out, g, layout)
			}
			return graph.Encode(os.Stdout, g, layout)
		},
	}
}
