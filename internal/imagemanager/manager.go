// Package imagemanager loads and caches decoded page images, coalescing
// concurrent requests for the same reference.
package imagemanager

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CacheStats reports cache occupancy.
type CacheStats struct {
	Cached      int   `json:"cached"`
	Loading     int   `json:"loading"`
	ApproxBytes int64 `json:"approx_bytes"`
}

// Manager is an instance-owned image cache. The zero value is not usable; use New.
type Manager struct {
	mu      sync.Mutex
	cache   map[string]image.Image
	loading map[string]chan struct{}
	epoch   uint64
	bytes   int64
	source  Source
	logger  zerolog.Logger
}

// New creates a manager reading through source.
func New(source Source, logger zerolog.Logger) *Manager {
	return &Manager{
		cache:   make(map[string]image.Image),
		loading: make(map[string]chan struct{}),
		source:  source,
		logger:  logger.With().Str("component", "ImageManager").Logger(),
	}
}

// Load returns the decoded image for ref. Concurrent calls for the same ref
// share one fetch; a waiter whose fetch ended without a cache entry gets a
// load error.
func (m *Manager) Load(ctx context.Context, ref string) (image.Image, error) {
	m.mu.Lock()
	if img, ok := m.cache[ref]; ok {
		m.mu.Unlock()
		return img, nil
	}
	if wait, ok := m.loading[ref]; ok {
		m.mu.Unlock()
		return m.await(ctx, ref, wait)
	}
	done := make(chan struct{})
	m.loading[ref] = done
	epoch := m.epoch
	m.mu.Unlock()

	img, err := m.fetchAndDecode(ctx, ref)

	m.mu.Lock()
	if m.loading[ref] == done {
		delete(m.loading, ref)
	}
	if err == nil && epoch == m.epoch {
		m.cache[ref] = img
		m.bytes += approxSize(img)
	}
	m.mu.Unlock()
	close(done)

	if err != nil {
		m.logger.Warn().Err(err).Str("url", ref).Msg("Image load failed")
		return nil, common.WrapErrorf(common.ErrImageLoad, "%s: %v", ref, err)
	}
	return img, nil
}

func (m *Manager) await(ctx context.Context, ref string, wait <-chan struct{}) (image.Image, error) {
	select {
	case <-wait:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	m.mu.Lock()
	img, ok := m.cache[ref]
	m.mu.Unlock()
	if !ok {
		return nil, common.WrapErrorf(common.ErrImageLoad, "%s: shared load failed", ref)
	}
	return img, nil
}

func (m *Manager) fetchAndDecode(ctx context.Context, ref string) (image.Image, error) {
	data, err := m.source.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.WrapError(err, "failed to decode image")
	}
	m.logger.Debug().Str("url", ref).Str("format", format).
		Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).
		Msg("Image loaded")
	return img, nil
}

// ClearCache drops every cached image and forgets in-flight loads; their
// results are discarded when they finish.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]image.Image)
	m.loading = make(map[string]chan struct{})
	m.bytes = 0
	m.epoch++
}

// CacheStats returns cache and in-flight counts.
func (m *Manager) CacheStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CacheStats{Cached: len(m.cache), Loading: len(m.loading), ApproxBytes: m.bytes}
}

func approxSize(img image.Image) int64 {
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}
