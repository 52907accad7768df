// Package tester drives the scenario x candidate matrix: every candidate is run
// against every scenario, checked, and folded into per-candidate statistics.
package tester

import (
	"context"
	"log/slog"

	"github.com/programme-lv/pathtester/internal/proc"
)

const DefaultMemoryCeiling = 150 << 20

type Config struct {
	// MemoryCeilingBytes is a soft limit; exceeding it marks the result but
	// never changes its outcome. Zero disables the check.
	MemoryCeilingBytes uint64
	Constraints        proc.Constraints
	// ReferenceWorkers bounds parallel reference computations per scenario.
	ReferenceWorkers int
}

func DefaultConfig() Config {
	return Config{
		MemoryCeilingBytes: DefaultMemoryCeiling,
		Constraints:        proc.DefaultConstraints(),
	}
}

type Tester struct {
	runner     *proc.Runner
	cfg        Config
	logger     *slog.Logger
	systemInfo string
}

func NewTester(runner *proc.Runner, cfg *Config, logger *slog.Logger) *Tester {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	return &Tester{
		runner:     runner,
		cfg:        *cfg,
		logger:     logger,
		systemInfo: getSystemInfo(context.Background()),
	}
}
