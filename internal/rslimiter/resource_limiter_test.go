package rslimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedUsage(u ResourceUsage, err error) UsageSampler {
	return func(context.Context) (ResourceUsage, error) { return u, err }
}

func TestNewMemoryGuard_Defaults(t *testing.T) {
	g := NewMemoryGuard(config.ResourceLimiterConfig{}, nil, zerolog.Nop())

	require.NotNil(t, g)
	assert.Equal(t, int64(1024), g.config.MaxMemoryMB)
	assert.Equal(t, 15*time.Second, g.config.CheckInterval())
	assert.Equal(t, int64(819), g.memoryThreshold)
	assert.Equal(t, 0.9, g.config.SystemMemThreshold)
}

func TestMemoryGuard_PurgesOnAppMemory(t *testing.T) {
	purged := 0
	cfg := config.NewDefaultResourceLimiterConfig()
	cfg.MaxMemoryMB = 100
	g := NewMemoryGuard(cfg, func() { purged++ }, zerolog.Nop())
	g.SetSampler(fixedUsage(ResourceUsage{AllocMB: 81, SystemMemUsedPercent: 10}, nil))

	exceeded, reason := g.Check(context.Background())

	assert.True(t, exceeded)
	assert.Contains(t, reason, "application memory")
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, g.Purges())
}

func TestMemoryGuard_PurgesOnSystemMemory(t *testing.T) {
	purged := 0
	g := NewMemoryGuard(config.NewDefaultResourceLimiterConfig(), func() { purged++ }, zerolog.Nop())
	g.SetSampler(fixedUsage(ResourceUsage{AllocMB: 1, SystemMemUsedPercent: 95}, nil))

	exceeded, reason := g.Check(context.Background())

	assert.True(t, exceeded)
	assert.Contains(t, reason, "system memory")
	assert.Equal(t, 1, purged)
}

func TestMemoryGuard_BelowThresholds(t *testing.T) {
	purged := 0
	g := NewMemoryGuard(config.NewDefaultResourceLimiterConfig(), func() { purged++ }, zerolog.Nop())
	g.SetSampler(fixedUsage(ResourceUsage{AllocMB: 10, SystemMemUsedPercent: 40}, nil))

	exceeded, _ := g.Check(context.Background())

	assert.False(t, exceeded)
	assert.Zero(t, purged)
}

func TestMemoryGuard_PurgeDisabled(t *testing.T) {
	purged := 0
	cfg := config.NewDefaultResourceLimiterConfig()
	cfg.EnableCachePurge = false
	g := NewMemoryGuard(cfg, func() { purged++ }, zerolog.Nop())
	g.SetSampler(fixedUsage(ResourceUsage{AllocMB: 5000}, nil))

	exceeded, _ := g.Check(context.Background())

	assert.True(t, exceeded)
	assert.Zero(t, purged)
	assert.Zero(t, g.Purges())
}

func TestMemoryGuard_SamplerErrorStillChecksProcess(t *testing.T) {
	purged := 0
	g := NewMemoryGuard(config.NewDefaultResourceLimiterConfig(), func() { purged++ }, zerolog.Nop())
	g.SetSampler(fixedUsage(ResourceUsage{AllocMB: 2000}, errors.New("no /proc")))

	exceeded, _ := g.Check(context.Background())

	assert.True(t, exceeded)
	assert.Equal(t, 1, purged)
}

func TestMemoryGuard_StartStopIdempotent(t *testing.T) {
	cfg := config.NewDefaultResourceLimiterConfig()
	cfg.CheckIntervalSecs = 1
	g := NewMemoryGuard(cfg, nil, zerolog.Nop())
	g.SetSampler(fixedUsage(ResourceUsage{}, nil))

	g.Start(context.Background())
	g.Start(context.Background())
	assert.True(t, g.Running())

	g.Stop()
	g.Stop()
	assert.False(t, g.Running())
}

func TestMemoryGuard_StopsWithContext(t *testing.T) {
	g := NewMemoryGuard(config.NewDefaultResourceLimiterConfig(), nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	g.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not exit after context cancellation")
	}
	g.Stop()
}

func TestGetResourceUsage_ReportsRuntime(t *testing.T) {
	usage, _ := GetResourceUsage(context.Background())

	assert.NotZero(t, usage.SysMB)
	assert.NotZero(t, usage.Goroutines)
}
