package tester

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// getSystemInfo describes the machine the run happens on. Whatever cannot be
// read is left out.
func getSystemInfo(ctx context.Context) string {
	var sb strings.Builder
	if h, err := host.InfoWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "host: %s %s %s (%s)\n", h.Platform, h.PlatformVersion, h.KernelVersion, h.KernelArch)
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		fmt.Fprintf(&sb, "cpu: %s\n", cpus[0].ModelName)
	}
	fmt.Fprintf(&sb, "logical cpus: %d\n", runtime.NumCPU())
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "memory: %d MiB total, %d MiB available\n", vm.Total>>20, vm.Available>>20)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
