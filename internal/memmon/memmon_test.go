package memmon_test

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"
	"time"

	"github.com/programme-lv/pathtester/internal/memmon"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMonitorReportsPeakOfRunningProcess(t *testing.T) {
	cmd := exec.Command("sleep", "2")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	m := memmon.Start(cmd.Process.Pid, 5*time.Millisecond, discard)
	time.Sleep(100 * time.Millisecond)

	peak := m.Stop()
	require.Greater(t, peak, uint64(0))
	require.Greater(t, m.Samples(), 0)
	require.Equal(t, peak, m.Stop(), "stop is idempotent")
}

func TestMonitorExitsOnItsOwnWhenProcessIsGone(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	m := memmon.Start(cmd.Process.Pid, 5*time.Millisecond, discard)
	require.NoError(t, cmd.Wait())

	finished := make(chan int, 1)
	go func() { finished <- m.Samples() }()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor kept sampling after the process was reaped")
	}
	m.Stop()
}

func TestTreeRssIncludesDescendants(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 2 & sleep 2 & wait")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	time.Sleep(100 * time.Millisecond)

	ctx := context.Background()
	tree, alive := memmon.TreeRss(ctx, int32(cmd.Process.Pid))
	require.True(t, alive)

	root, err := process.NewProcessWithContext(ctx, int32(cmd.Process.Pid))
	require.NoError(t, err)
	mem, err := root.MemoryInfoWithContext(ctx)
	require.NoError(t, err)
	require.Greater(t, tree, mem.RSS, "two sleeping children add to the shell's own resident set")
}

func TestTreeRssOfMissingProcess(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())

	_, alive := memmon.TreeRss(context.Background(), int32(cmd.Process.Pid))
	require.False(t, alive)
}
