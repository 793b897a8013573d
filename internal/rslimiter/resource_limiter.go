// Package rslimiter watches memory while page images are cached and purges
// the cache when the process or the host runs short.
package rslimiter

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
)

// MemoryGuard periodically samples memory usage and calls a purge callback
// (normally the image manager's ClearCache) once a threshold is crossed.
type MemoryGuard struct {
	config          config.ResourceLimiterConfig
	logger          zerolog.Logger
	sample          UsageSampler
	purge           func()
	memoryThreshold int64

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	purges    int
}

// NewMemoryGuard creates a guard; zero config fields take the defaults.
func NewMemoryGuard(cfg config.ResourceLimiterConfig, purge func(), logger zerolog.Logger) *MemoryGuard {
	defaults := config.NewDefaultResourceLimiterConfig()
	if cfg.MaxMemoryMB == 0 {
		cfg.MaxMemoryMB = defaults.MaxMemoryMB
	}
	if cfg.CheckIntervalSecs == 0 {
		cfg.CheckIntervalSecs = defaults.CheckIntervalSecs
	}
	if cfg.MemoryThreshold == 0 {
		cfg.MemoryThreshold = defaults.MemoryThreshold
	}
	if cfg.SystemMemThreshold == 0 {
		cfg.SystemMemThreshold = defaults.SystemMemThreshold
	}

	return &MemoryGuard{
		config:          cfg,
		logger:          logger.With().Str("component", "MemoryGuard").Logger(),
		sample:          GetResourceUsage,
		purge:           purge,
		memoryThreshold: int64(float64(cfg.MaxMemoryMB) * cfg.MemoryThreshold),
	}
}

// SetSampler replaces the usage source.
func (g *MemoryGuard) SetSampler(sampler UsageSampler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sample = sampler
}

// Start begins monitoring until ctx is done or Stop is called.
func (g *MemoryGuard) Start(ctx context.Context) {
	g.mu.Lock()
	if g.isRunning {
		g.mu.Unlock()
		return
	}
	g.isRunning = true
	ctx, g.cancel = context.WithCancel(ctx)
	g.mu.Unlock()

	g.wg.Add(1)
	go g.monitor(ctx)

	g.logger.Info().
		Int64("max_memory_mb", g.config.MaxMemoryMB).
		Dur("check_interval", g.config.CheckInterval()).
		Float64("system_mem_threshold", g.config.SystemMemThreshold).
		Bool("cache_purge_enabled", g.config.EnableCachePurge).
		Msg("Memory guard started")
}

// Stop stops the monitor and waits for it to exit.
func (g *MemoryGuard) Stop() {
	g.mu.Lock()
	if !g.isRunning {
		g.mu.Unlock()
		return
	}
	g.isRunning = false
	cancel := g.cancel
	g.mu.Unlock()

	cancel()
	g.wg.Wait()
	g.logger.Info().Msg("Memory guard stopped")
}

// Running reports whether the monitor goroutine is active.
func (g *MemoryGuard) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isRunning
}

// Purges returns how many times the cache was purged.
func (g *MemoryGuard) Purges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.purges
}

func (g *MemoryGuard) monitor(ctx context.Context) {
	defer g.wg.Done()

	ticker := time.NewTicker(g.config.CheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Check(ctx)
		}
	}
}

// Check samples usage once and purges when a limit is exceeded. It returns
// whether a limit was exceeded and why.
func (g *MemoryGuard) Check(ctx context.Context) (bool, string) {
	g.mu.Lock()
	sample := g.sample
	g.mu.Unlock()

	usage, err := sample(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Failed to read system memory stats")
	}

	exceeded, reason := g.exceeded(usage)
	if !exceeded {
		g.logger.Debug().
			Int64("alloc_mb", usage.AllocMB).
			Int64("sys_mb", usage.SysMB).
			Int("goroutines", usage.Goroutines).
			Float64("system_mem_percent", usage.SystemMemUsedPercent).
			Msg("Current resource usage")
		return false, ""
	}

	g.logger.Warn().
		Str("reason", reason).
		Int64("alloc_mb", usage.AllocMB).
		Int64("threshold_mb", g.memoryThreshold).
		Float64("system_mem_percent", usage.SystemMemUsedPercent).
		Msg("Memory limit exceeded")

	if g.config.EnableCachePurge && g.purge != nil {
		g.purge()
		g.mu.Lock()
		g.purges++
		g.mu.Unlock()
		g.forceGC()
	}
	return true, reason
}

func (g *MemoryGuard) exceeded(usage ResourceUsage) (bool, string) {
	if usage.AllocMB > g.memoryThreshold {
		return true, fmt.Sprintf("application memory %dMB above %dMB", usage.AllocMB, g.memoryThreshold)
	}
	if usage.SystemMemUsedPercent/100.0 > g.config.SystemMemThreshold {
		return true, fmt.Sprintf("system memory %.1f%% above %.1f%%", usage.SystemMemUsedPercent, g.config.SystemMemThreshold*100)
	}
	return false, ""
}

func (g *MemoryGuard) forceGC() {
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)
	runtime.GC()
	runtime.ReadMemStats(&m2)

	g.logger.Info().
		Uint64("before_mb", m1.Alloc/1024/1024).
		Uint64("after_mb", m2.Alloc/1024/1024).
		Msg("Image cache purged and garbage collected")
}
