package rslimiter

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceUsage represents current process and system memory usage
type ResourceUsage struct {
	AllocMB              int64   // Heap currently allocated by the process
	SysMB                int64   // Memory obtained from the OS by the Go runtime
	Goroutines           int     // Number of goroutines
	GCCount              int64   // Number of GC cycles
	SystemMemUsedMB      int64   // System memory used (MB)
	SystemMemTotalMB     int64   // Total system memory (MB)
	SystemMemUsedPercent float64 // System memory used percentage (0-100)
}

// UsageSampler returns a resource usage sample.
type UsageSampler func(ctx context.Context) (ResourceUsage, error)

// GetResourceUsage samples the Go runtime and, through gopsutil, the host memory.
// A failing host query leaves the system fields zero and is returned as the error.
func GetResourceUsage(ctx context.Context) (ResourceUsage, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage := ResourceUsage{
		AllocMB:    int64(m.Alloc / 1024 / 1024),
		SysMB:      int64(m.Sys / 1024 / 1024),
		Goroutines: runtime.NumGoroutine(),
		GCCount:    int64(m.NumGC),
	}

	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return usage, err
	}
	usage.SystemMemUsedMB = int64(vmStat.Used / 1024 / 1024)
	usage.SystemMemTotalMB = int64(vmStat.Total / 1024 / 1024)
	usage.SystemMemUsedPercent = vmStat.UsedPercent
	return usage, nil
}
