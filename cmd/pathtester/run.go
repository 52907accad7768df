package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/pathtester/internal/environment"
	"github.com/programme-lv/pathtester/internal/filestore"
	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/tester"
	"github.com/urfave/cli/v3"
)

func newRunCmd(env *environment.EnvConfig) *cli.Command {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "graph",
			Aliases: []string{"g"},
			Usage:   "graph file, https:// or s3:// URL; repeatable",
		},
		&cli.BoolFlag{
			Name:  "generate",
			Usage: "run on one generated graph sized by --vertices, --edges and --sources",
		},
		&cli.IntFlag{Name: "vertices", Usage: "generated vertex count", Value: 1000},
		&cli.IntFlag{Name: "edges", Usage: "generated edge count", Value: 5000},
		&cli.IntFlag{Name: "sources", Usage: "generated source count", Value: 10},
		&cli.IntFlag{Name: "max-weight", Usage: "largest generated edge weight", Value: tester.DefaultMaxWeight},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "generated density profile: random, sparse or dense",
			Value: string(graph.ProfileRandom),
		},
		&cli.IntFlag{Name: "seed", Usage: "random seed for generated graphs", Value: 42},
		&cli.BoolFlag{Name: "stress", Usage: "add the stress presets to the builtin scenarios"},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "absolute compares against the reference, relative against the first valid candidate",
			Value: string(tester.ModeAbsolute),
		},
	}

	return &cli.Command{
		Name:      "run",
		Usage:     "run candidate solvers over graph files, a generated graph or the builtin scenarios",
		ArgsUsage: "<candidate>...",
		Flags:     append(flags, harnessFlags(env)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("at least one candidate executable is required")
			}
			candidates, err := tester.NewCandidates(cmd.Args().Slice())
			if err != nil {
				return err
			}
			scenarios, err := buildScenarios(ctx, cmd, logger)
			if err != nil {
				return err
			}
			_, err = runTester(ctx, cmd, env, logger, scenarios, candidates)
			return err
		},
	}
}

func buildScenarios(ctx context.Context, cmd *cli.Command, logger *slog.Logger) ([]tester.Scenario, error) {
	mode, err := tester.ParseMode(cmd.String("mode"))
	if err != nil {
		return nil, err
	}
	srcs := cmd.StringSlice("graph")

	switch {
	case len(srcs) > 0 && cmd.Bool("generate"):
		return nil, fmt.Errorf("--graph and --generate are mutually exclusive")
	case len(srcs) > 0:
		return loadScenarios(ctx, cmd, logger, srcs, mode)
	}

	rng := graph.NewRand(uint64(cmd.Int("seed")))
	if !cmd.Bool("generate") {
		return tester.GenerateScenarios(rng, tester.Presets(cmd.Bool("stress")), mode)
	}

	profile, err := graph.ParseProfile(cmd.String("profile"))
	if err != nil {
		return nil, err
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
	name := fmt.Sprintf("Generated %s (N=%d, M=%d, K=%d)", profile, p.Vertices, p.EffectiveEdges(), p.Sources)
	return tester.GenerateScenarios(rng, []tester.Preset{{Name: name, Params: p}}, mode)
}

// loadScenarios fetches every graph source up front and builds one scenario per
// file, named after the file.
func loadScenarios(
	ctx context.Context,
	cmd *cli.Command,
	logger *slog.Logger,
	srcs []string,
	mode tester.Mode,
) ([]tester.Scenario, error) {
	withS3 := slices.ContainsFunc(srcs, func(src string) bool {
		return strings.HasPrefix(src, "s3://")
	})
	fs, err := newFileStore(ctx, cmd, logger, withS3)
	if err != nil {
		return nil, err
	}
	if err := fs.Prefetch(ctx, srcs); err != nil {
		return nil, err
	}

	ids := mapset.NewThreadUnsafeSet[string]()
	res := make([]tester.Scenario, 0, len(srcs))
	for _, src := range srcs {
		local, err := fs.Await(ctx, src)
		if err != nil {
			return nil, err
		}
		g, err := graph.ReadFile(local)
		if err != nil {
			return nil, err
		}

		name := scenarioName(src)
		id := strings.ToLower(name)
		for i := 2; !ids.Add(id); i++ {
			id = fmt.Sprintf("%s#%d", strings.ToLower(name), i)
		}
		res = append(res, tester.Scenario{
			ID:    id,
			Name:  name,
			Graph: g,
			Mode:  mode,
		})
	}
	return res, nil
}

// scenarioName is the source's base name without its graph extensions.
func scenarioName(src string) string {
	if filestore.IsRemote(src) {
		src, _, _ = strings.Cut(src, "?")
		if i := strings.LastIndex(src, "/"); i >= 0 {
			src = src[i+1:]
		}
	} else {
		src = filepath.Base(src)
	}
	src = strings.TrimSuffix(src, ".zst")
	return strings.TrimSuffix(src, filepath.Ext(src))
}
