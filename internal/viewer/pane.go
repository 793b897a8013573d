package viewer

import (
	"math"

	"github.com/aleister1102/ocrdiff/internal/canvas"
	"github.com/aleister1102/ocrdiff/internal/eventloop"
	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// Pane is a headless scroll container holding one document. Setting its
// scroll position queues a scroll event on the loop, the way a browser
// dispatches one after scrollTop changes.
type Pane struct {
	side  models.PaneSide
	sched eventloop.Scheduler
	emit  func(models.PaneSide)

	scrollTop    float64
	scrollHeight float64
	width        float64
	clientHeight float64

	doc     Document
	layout  []models.PageLayout
	diffs   models.PageDifferences
	pool    *canvas.Pool
	visible models.VisibleRange
}

func newPane(side models.PaneSide, sched eventloop.Scheduler, poolSize int, width, height float64, emit func(models.PaneSide)) *Pane {
	return &Pane{
		side:         side,
		sched:        sched,
		emit:         emit,
		width:        width,
		clientHeight: height,
		pool:         canvas.NewPool(poolSize),
	}
}

func (p *Pane) ScrollTop() float64 {
	return p.scrollTop
}

// SetScrollTop clamps v to the scrollable range. A change queues a scroll event.
func (p *Pane) SetScrollTop(v float64) {
	v = math.Max(0, math.Min(v, p.MaxScrollTop()))
	if v == p.scrollTop {
		return
	}
	p.scrollTop = v
	if p.emit != nil {
		side := p.side
		p.sched.Post(func() { p.emit(side) })
	}
}

func (p *Pane) ScrollHeight() float64 {
	return p.scrollHeight
}

func (p *Pane) ClientHeight() float64 {
	return p.clientHeight
}

// MaxScrollTop is the largest reachable scroll position.
func (p *Pane) MaxScrollTop() float64 {
	return layout.MaxScrollTop(p.scrollHeight, p.clientHeight)
}

// Metrics returns the pane's scroll and size values.
func (p *Pane) Metrics() models.PaneMetrics {
	return models.PaneMetrics{ScrollTop: p.scrollTop, ClientHeight: p.clientHeight, Width: p.width}
}

// Visible returns the page window of the last update.
func (p *Pane) Visible() models.VisibleRange {
	return p.visible
}

// Layout returns the current page geometry.
func (p *Pane) Layout() []models.PageLayout {
	return p.layout
}

// CurrentPage is the 1-based page at the top edge of the viewport, 0 when
// the pane holds no pages.
func (p *Pane) CurrentPage() int {
	return layout.PageAtOffset(p.layout, p.scrollTop) + 1
}

// PageCount is the number of laid out pages.
func (p *Pane) PageCount() int {
	return len(p.layout)
}

// relayout recomputes geometry and clamps the scroll position silently.
func (p *Pane) relayout(engine *layout.Engine) {
	p.layout = engine.CalculatePageLayout(p.doc.Info, p.width)
	p.scrollHeight = engine.CalculateTotalHeight(p.layout)
	p.scrollTop = math.Max(0, math.Min(p.scrollTop, p.MaxScrollTop()))
	p.pool.Reset()
}
