// Package gutter draws the strip between both panes that carries one icon per
// difference and turns clicks on those icons into selections.
package gutter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
)

// Cursor shapes reported by HandleMouseMove.
const (
	CursorDefault = "default"
	CursorPointer = "pointer"
)

var backgroundColor = color.NRGBA{R: 0xf8, G: 0xf9, B: 0xfa, A: 0xff}

// SelectFunc receives the index (within the rendered list) and operation of a
// clicked icon.
type SelectFunc func(diffIndex int, op models.Operation)

// Options sizes the gutter surface.
type Options struct {
	Width        int
	Height       int
	HeaderHeight float64
}

// Gutter owns the middle surface and its clickable areas. It is not safe for
// concurrent use; the viewer drives it from its event loop.
type Gutter struct {
	engine   *layout.Engine
	opts     Options
	onSelect SelectFunc
	logger   zerolog.Logger

	dc     *gg.Context
	areas  []models.ClickableArea
	cursor string
}

// New creates a gutter. onSelect may be nil.
func New(engine *layout.Engine, opts Options, onSelect SelectFunc, logger zerolog.Logger) *Gutter {
	if opts.Width < IconSize {
		opts.Width = IconSize
	}
	if opts.Height < 1 {
		opts.Height = 1
	}
	return &Gutter{
		engine:   engine,
		opts:     opts,
		onSelect: onSelect,
		logger:   logger.With().Str("component", "DiffGutter").Logger(),
		dc:       gg.NewContext(opts.Width, opts.Height),
		cursor:   CursorDefault,
	}
}

// Resize changes the surface size; the next Render repaints it.
func (g *Gutter) Resize(width, height int) {
	if width < IconSize {
		width = IconSize
	}
	if height < 1 {
		height = 1
	}
	g.opts.Width, g.opts.Height = width, height
	g.dc = gg.NewContext(width, height)
	g.areas = nil
}

// Width returns the gutter width in pixels.
func (g *Gutter) Width() int {
	return g.opts.Width
}

// IconX is the horizontal centre of every icon.
func (g *Gutter) IconX() float64 {
	return float64(g.opts.Width) / 2
}

// Render repaints the gutter for the current left-pane scroll position.
// Each visible difference gets an icon and a clickable area keyed
// "middle-<index>". onComplete runs after painting so overlays that depend on
// the fresh icon positions can follow.
func (g *Gutter) Render(diffs []models.DifferenceItem, left models.PaneMetrics, oldInfo, newInfo *models.DocumentImageInfo, onComplete func()) {
	dc := g.dc
	dc.SetColor(backgroundColor)
	dc.Clear()

	g.areas = g.areas[:0]
	x := g.IconX()
	drawn := 0
	for i := range diffs {
		diff := &diffs[i]
		pos, ok := CalculateDiffIconYPosition(g.engine, diff, left, oldInfo, newInfo, g.opts.HeaderHeight)
		if !ok || !pos.Visible {
			continue
		}
		DrawDiffIcon(dc, x, pos.RelativeY, diff.Operation)
		box, _ := diff.OwnBBox()
		g.areas = append(g.areas, models.ClickableArea{
			ID:        fmt.Sprintf("middle-%d", i),
			X:         x - IconSize/2,
			Y:         pos.RelativeY - IconSize/2,
			Width:     IconSize,
			Height:    IconSize,
			DiffIndex: i,
			Operation: diff.Operation,
			BBox:      box,
			Diff:      diff,
		})
		drawn++
	}
	g.logger.Trace().Int("total", len(diffs)).Int("drawn", drawn).Msg("Rendered gutter")

	if onComplete != nil {
		onComplete()
	}
}

// Areas returns the clickable areas of the last render.
func (g *Gutter) Areas() []models.ClickableArea {
	return append([]models.ClickableArea(nil), g.areas...)
}

func (g *Gutter) hit(x, y float64) (models.ClickableArea, bool) {
	for _, area := range g.areas {
		if area.Contains(x, y) {
			return area, true
		}
	}
	return models.ClickableArea{}, false
}

// HandleClick selects the icon under (x, y). It reports whether one was hit.
func (g *Gutter) HandleClick(x, y float64) bool {
	area, ok := g.hit(x, y)
	if !ok {
		return false
	}
	g.logger.Debug().Str("area", area.ID).Str("operation", string(area.Operation)).Msg("Gutter icon clicked")
	if g.onSelect != nil {
		g.onSelect(area.DiffIndex, area.Operation)
	}
	return true
}

// HandleMouseMove updates the cursor for the pointer at (x, y).
func (g *Gutter) HandleMouseMove(x, y float64) string {
	if _, ok := g.hit(x, y); ok {
		g.cursor = CursorPointer
	} else {
		g.cursor = CursorDefault
	}
	return g.cursor
}

// HandleMouseLeave resets the cursor.
func (g *Gutter) HandleMouseLeave() {
	g.cursor = CursorDefault
}

// Cursor returns the current cursor shape.
func (g *Gutter) Cursor() string {
	return g.cursor
}

// Image returns a copy of the gutter surface.
func (g *Gutter) Image() *image.RGBA {
	src := g.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
