// Package layout computes the vertical geometry of paginated documents inside a
// fixed-width pane and the window of pages that should hold a canvas.
package layout

import (
	"math"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// Options are the geometry constants of a pane.
type Options struct {
	PageSpacing        float64
	ScrollBuffer       float64
	MinRenderedPages   int
	MaxVisibleCanvases int
}

// DefaultOptions mirrors the viewer configuration defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.NewDefaultViewerConfig())
}

// OptionsFromConfig picks the layout constants out of the viewer configuration.
func OptionsFromConfig(vc config.ViewerConfig) Options {
	return Options{
		PageSpacing:        vc.PageSpacing,
		ScrollBuffer:       vc.ScrollBuffer,
		MinRenderedPages:   vc.MinRenderedPages,
		MaxVisibleCanvases: vc.MaxVisibleCanvases,
	}
}

// Engine evaluates layouts with a fixed set of options.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. Non-positive counts fall back to the defaults.
func NewEngine(opts Options) *Engine {
	def := config.NewDefaultViewerConfig()
	if opts.MinRenderedPages <= 0 {
		opts.MinRenderedPages = def.MinRenderedPages
	}
	if opts.MaxVisibleCanvases <= 0 {
		opts.MaxVisibleCanvases = def.MaxVisibleCanvases
	}
	if opts.PageSpacing < 0 {
		opts.PageSpacing = 0
	}
	if opts.ScrollBuffer < 0 {
		opts.ScrollBuffer = 0
	}
	return &Engine{opts: opts}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// CalculatePageLayout scales every page to containerWidth and stacks them with
// PageSpacing between consecutive pages. A page with no width keeps its slot
// with zero height so indices stay aligned with the page list.
func (e *Engine) CalculatePageLayout(info *models.DocumentImageInfo, containerWidth float64) []models.PageLayout {
	if info == nil {
		return nil
	}
	layout := make([]models.PageLayout, 0, len(info.Pages))
	currentY := 0.0
	for _, page := range info.Pages {
		var scale, height float64
		if page.Width > 0 {
			scale = containerWidth / page.Width
			height = page.Height * scale
		}
		layout = append(layout, models.PageLayout{Y: currentY, Height: height, Scale: scale})
		currentY += height + e.opts.PageSpacing
	}
	return layout
}

// CalculateTotalHeight is the scrollable content height: the last page's
// bottom plus one trailing spacing unit.
func (e *Engine) CalculateTotalHeight(layout []models.PageLayout) float64 {
	if len(layout) == 0 {
		return 0
	}
	return layout[len(layout)-1].Bottom() + e.opts.PageSpacing
}

// UpdateVisibleCanvases selects the page indices that should be rendered for a
// viewport. Pages intersecting the buffered viewport come first; when fewer than
// MinRenderedPages result and the document is long enough, the window is
// recentred on the page nearest the viewport centre; finally the window is
// capped at MaxVisibleCanvases around its midpoint.
func (e *Engine) UpdateVisibleCanvases(scrollTop, containerHeight float64, layout []models.PageLayout) models.VisibleRange {
	startY := math.Max(0, scrollTop-e.opts.ScrollBuffer)
	endY := scrollTop + containerHeight + e.opts.ScrollBuffer

	visible := make([]int, 0, e.opts.MaxVisibleCanvases)
	for i, page := range layout {
		if page.Bottom() >= startY && page.Y <= endY {
			visible = append(visible, i)
		}
	}

	minPages := e.opts.MinRenderedPages
	if len(visible) < minPages && len(layout) >= minPages {
		center := nearestPage(layout, scrollTop+containerHeight/2)
		start := center - minPages/2
		if start < 0 {
			start = 0
		}
		end := start + minPages - 1
		if end > len(layout)-1 {
			end = len(layout) - 1
			start = end - minPages + 1
		}
		visible = visible[:0]
		for i := start; i <= end; i++ {
			visible = append(visible, i)
		}
	}

	if maxPages := e.opts.MaxVisibleCanvases; len(visible) > maxPages {
		start := len(visible)/2 - maxPages/2
		if start < 0 {
			start = 0
		}
		visible = visible[start : start+maxPages]
	}

	r := models.VisibleRange{VisiblePages: visible}
	if len(visible) > 0 {
		r.Start = visible[0]
		r.End = visible[len(visible)-1]
	}
	return r
}

func nearestPage(layout []models.PageLayout, y float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, page := range layout {
		if d := math.Abs(page.Y + page.Height/2 - y); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// PageAtOffset returns the index of the page under document offset y. Offsets
// in a spacing band belong to the page above; offsets past the end belong to
// the last page. It returns -1 for an empty layout.
func PageAtOffset(layout []models.PageLayout, y float64) int {
	if len(layout) == 0 {
		return -1
	}
	idx := 0
	for i, page := range layout {
		if page.Y > y {
			break
		}
		idx = i
	}
	return idx
}

// ScrollTopForPage returns the offset that brings 1-based page to the top.
func ScrollTopForPage(layout []models.PageLayout, page int) (float64, bool) {
	if page < 1 || page > len(layout) {
		return 0, false
	}
	return layout[page-1].Y, true
}

// AbsoluteY maps a source-pixel y on a 1-based page into document coordinates.
func AbsoluteY(layout []models.PageLayout, page int, sourceY float64) (float64, bool) {
	if page < 1 || page > len(layout) {
		return 0, false
	}
	p := layout[page-1]
	return p.Y + sourceY*p.Scale, true
}

// MaxScrollTop is the largest scrollTop a pane of the given height can reach.
func MaxScrollTop(scrollHeight, clientHeight float64) float64 {
	return math.Max(0, scrollHeight-clientHeight)
}
