// Package host samples host-level CPU and memory usage.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const collectCPUUsagePerCPU = false

// MinCPUSampleWindow is the smallest window the CPU busy percentage is
// averaged over. Shorter windows produce unstable readings.
const MinCPUSampleWindow = 100 * time.Millisecond

// CPUSampleWindow sizes the CPU sampling window to the elapsed GPU
// collection time, so the CPU reading covers roughly the same wall-clock
// span as the GPU readings of the cycle.
func CPUSampleWindow(gpuCollectionTime time.Duration) time.Duration {
	if gpuCollectionTime < MinCPUSampleWindow {
		return MinCPUSampleWindow
	}
	return gpuCollectionTime
}

// CPUUsedPercent returns the busy percentage across all CPUs, averaged
// over the given window. The call blocks for the window duration.
func CPUUsedPercent(ctx context.Context, window time.Duration) (float64, error) {
	usages, err := cpu.PercentWithContext(ctx, window, collectCPUUsagePerCPU)
	if err != nil {
		return 0, err
	}
	if len(usages) != 1 {
		return 0, fmt.Errorf("expected 1 cpu usage, got %d", len(usages))
	}
	return usages[0], nil
}

// VirtualMemory is the host memory usage snapshot.
type VirtualMemory struct {
	TotalBytes  uint64  `json:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// MemoryUsage returns the current virtual memory usage of the host.
func MemoryUsage(ctx context.Context) (VirtualMemory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return VirtualMemory{}, err
	}
	return VirtualMemory{
		TotalBytes:  vm.Total,
		UsedBytes:   vm.Used,
		UsedPercent: vm.UsedPercent,
	}, nil
}
