// Package memmon samples the resident memory of a process tree while it runs.
//
// The reported peak is an approximation: the tree is sampled at a fixed
// interval, so allocations that rise and fall between two samples are missed.
package memmon

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const DefaultInterval = 10 * time.Millisecond

// Monitor owns one sampling goroutine bound to one process. The goroutine is the
// only writer of peak; Stop signals it, waits for it to exit and only then reads.
type Monitor struct {
	pid      int32
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	peak    uint64
	samples int
}

// Start launches sampling of pid and all of its descendants.
func Start(pid int, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m := &Monitor{
		pid:      int32(pid),
		interval: interval,
		logger:   logger.With(slog.Int("pid", pid)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Monitor) run() {
	defer close(m.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var peak uint64
	samples := 0
	defer func() {
		m.peak = peak
		m.samples = samples
	}()

	for {
		rss, alive := TreeRss(ctx, m.pid)
		if !alive {
			m.logger.Debug("process tree gone, sampling stopped", slog.Int("samples", samples))
			return
		}
		samples++
		peak = max(peak, rss)

		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends sampling and returns the peak resident bytes observed. It may be
// called more than once; every call returns the same value.
func (m *Monitor) Stop() uint64 {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
	return m.peak
}

// Samples is the number of successful samples. Valid after Stop.
func (m *Monitor) Samples() int {
	<-m.done
	return m.samples
}

// TreeRss sums the resident set of pid and its live descendants. alive is false
// once the root process is gone or a zombie. Descendants that vanish between
// enumeration and sampling are skipped.
func TreeRss(ctx context.Context, pid int32) (rss uint64, alive bool) {
	root, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return 0, false
	}
	if status, err := root.StatusWithContext(ctx); err != nil || slices.Contains(status, process.Zombie) {
		return 0, false
	}
	mem, err := root.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, false
	}
	rss = mem.RSS

	for _, p := range descendants(ctx, pid) {
		mem, err := p.MemoryInfoWithContext(ctx)
		if err != nil {
			continue
		}
		rss += mem.RSS
	}
	return rss, true
}

func descendants(ctx context.Context, pid int32) []*process.Process {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil
	}

	children := make(map[int32][]*process.Process)
	for _, p := range procs {
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			continue
		}
		children[ppid] = append(children[ppid], p)
	}

	var res []*process.Process
	queue := []int32{pid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			res = append(res, c)
			queue = append(queue, c.Pid)
		}
	}
	return res
}
