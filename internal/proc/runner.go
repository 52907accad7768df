// Package proc runs candidate executables against a graph with a wall time
// limit, killing the whole process tree on expiry, while memmon samples the
// tree's resident memory.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/programme-lv/pathtester/internal"
	"github.com/programme-lv/pathtester/internal/graph"
	"github.com/programme-lv/pathtester/internal/memmon"
)

// maxStderrBytes bounds how much standard error is kept as diagnostic context.
const maxStderrBytes = 64 << 10

type Runner struct {
	tmpDir string
	logger *slog.Logger
}

// NewRunner stages inputs under tmpDir, or the system temp dir when empty.
func NewRunner(tmpDir string, logger *slog.Logger) *Runner {
	return &Runner{tmpDir: tmpDir, logger: logger}
}

// Execute stages g for the candidate, runs it and collects its output.
//
// A non-nil RunData is returned whenever the process was started. The error is
// ErrTimeout when the wall time limit expired, *ExitError on a non-zero exit,
// and anything else on a harness failure. Staging files are removed on every
// path.
func (r *Runner) Execute(
	ctx context.Context,
	exe string,
	g *graph.Graph,
	constraints *Constraints,
) (*internal.RunData, error) {
	if constraints == nil {
		c := DefaultConstraints()
		constraints = &c
	}
	logger := r.logger.With(slog.String("exe", exe))

	dir, err := os.MkdirTemp(r.tmpDir, "pathtester-run-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove staging dir", slog.String("dir", dir), slog.Any("error", err))
		}
	}()

	inPath := filepath.Join(dir, "input.txt")
	if err := graph.WriteFile(inPath, g, constraints.Layout); err != nil {
		return nil, fmt.Errorf("failed to stage input: %w", err)
	}

	stdoutPath := filepath.Join(dir, "stdout.txt")
	stdout, err := os.Create(stdoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout file: %w", err)
	}
	defer stdout.Close()

	stderrPath := filepath.Join(dir, "stderr.txt")
	stderr, err := os.Create(stderrPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr file: %w", err)
	}
	defer stderr.Close()

	runCtx, cancel := context.WithTimeout(ctx, constraints.WallTimeLimit)
	defer cancel()

	var cmd *exec.Cmd
	switch constraints.Transport {
	case TransportStdin:
		stdin, err := os.Open(inPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open staged input: %w", err)
		}
		defer stdin.Close()
		cmd = exec.CommandContext(runCtx, exe)
		cmd.Stdin = stdin
	default:
		cmd = exec.CommandContext(runCtx, exe, inPath)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	startInOwnGroup(cmd)
	cmd.Cancel = func() error {
		logger.Debug("run context done, killing process tree")
		return killTree(cmd.Process.Pid)
	}
	cmd.WaitDelay = time.Second

	logger.Debug("starting candidate",
		slog.String("transport", string(constraints.Transport)),
		slog.Duration("limit", constraints.WallTimeLimit),
	)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", exe, err)
	}
	mon := memmon.Start(cmd.Process.Pid, constraints.SampleInterval, logger)

	waitErr := cmd.Wait()
	wall := time.Since(start)
	peak := mon.Stop()

	// Descendants that outlived the candidate are not allowed to linger.
	if err := killTree(cmd.Process.Pid); err != nil && !errors.Is(err, os.ErrProcessDone) {
		logger.Warn("failed to kill leftover processes", slog.Any("error", err))
	}

	data := &internal.RunData{
		ExitCode:     cmd.ProcessState.ExitCode(),
		ExitSignal:   exitSignal(cmd.ProcessState),
		WallTime:     wall,
		PeakRssBytes: peak,
		RssSamples:   mon.Samples(),
		TimedOut:     waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}
	logger.Debug("candidate finished",
		slog.Int("exit", data.ExitCode),
		slog.Duration("wall", wall),
		slog.Uint64("peak_rss", peak),
		slog.Bool("timed_out", data.TimedOut),
	)

	data.Stdout, err = os.ReadFile(stdoutPath)
	if err != nil {
		return data, fmt.Errorf("failed to read stdout: %w", err)
	}
	data.Stderr, err = readHead(stderrPath, maxStderrBytes)
	if err != nil {
		return data, fmt.Errorf("failed to read stderr: %w", err)
	}

	if data.TimedOut {
		return data, ErrTimeout
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return data, &ExitError{
				Code:   data.ExitCode,
				Signal: data.ExitSignal,
				Stderr: string(data.Stderr),
			}
		}
		return data, fmt.Errorf("failed to wait for %s: %w", exe, waitErr)
	}
	return data, nil
}

func readHead(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, limit))
}
