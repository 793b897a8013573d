// Package connector computes the lines that tie the selected difference's
// gutter icon to its boxes in both panes, and renders them as SVG or onto a
// raster snapshot.
package connector

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/aleister1102/ocrdiff/internal/gutter"
	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
)

const (
	iconHalf       = gutter.IconSize / 2
	stubLength     = 20
	stubEdgeMargin = 5
)

// Color is a line colour in both raster and CSS form.
type Color struct {
	RGBA color.NRGBA
	CSS  string
}

var (
	DeleteColor  = Color{RGBA: color.NRGBA{R: 255, G: 99, B: 99, A: 204}, CSS: "rgba(255, 99, 99, 0.8)"}
	InsertColor  = Color{RGBA: color.NRGBA{R: 103, G: 194, B: 58, A: 204}, CSS: "rgba(103, 194, 58, 0.8)"}
	DefaultColor = Color{RGBA: color.NRGBA{R: 128, G: 128, B: 128, A: 204}, CSS: "rgba(128, 128, 128, 0.8)"}
)

// ColorFor returns the line colour of an operation.
func ColorFor(op models.Operation) Color {
	switch op {
	case models.OperationDelete:
		return DeleteColor
	case models.OperationInsert:
		return InsertColor
	default:
		return DefaultColor
	}
}

// Segment is one straight connector line in container coordinates.
type Segment struct {
	X1, Y1, X2, Y2 float64
	Color          Color
}

// Geometry places the three columns inside the comparison container. Pane
// tops are where each pane (header included) begins; canvas X values are the
// left edges of the page canvases.
type Geometry struct {
	Width        float64
	Height       float64
	LeftTop      float64
	LeftCanvasX  float64
	MiddleX      float64
	MiddleTop    float64
	MiddleWidth  float64
	RightTop     float64
	RightCanvasX float64
	HeaderHeight float64
}

// Input is everything Compute needs besides the geometry.
type Input struct {
	Selected *models.DifferenceItem
	Left     models.PaneMetrics
	Right    models.PaneMetrics
	OldInfo  *models.DocumentImageInfo
	NewInfo  *models.DocumentImageInfo
}

type anchor struct {
	y, x, scale float64
	box         models.BBox
}

// boxAnchor locates box on a 1-based page of a pane and returns its centre
// relative to the pane's viewport (header included).
func boxAnchor(engine *layout.Engine, box models.BBox, page int, pane models.PaneMetrics, info *models.DocumentImageInfo, header float64) (anchor, bool) {
	if info == nil {
		return anchor{}, false
	}
	pages := engine.CalculatePageLayout(info, pane.Width)
	idx := page - 1
	if idx < 0 || idx >= len(pages) {
		return anchor{}, false
	}
	p := pages[idx]
	abs := p.Y + box.CenterY(p.Scale)
	return anchor{y: abs - pane.ScrollTop + header, scale: p.Scale, box: box}, true
}

// Compute returns the connector segments of the selected difference. Nothing
// is returned when there is no selection or its icon is off screen.
//
// The left side is a single line from the box's right edge to the icon's left
// edge: DELETE starts at oldBbox, INSERT at prevOldBbox when present. The
// right side has three parts: a short stub out of the icon's right edge, a
// diagonal to the right canvas edge and a horizontal run to the box's left
// edge. INSERT ends at newBbox, DELETE at prevNewBbox when present.
func Compute(engine *layout.Engine, geo Geometry, in Input) []Segment {
	diff := in.Selected
	if diff == nil {
		return nil
	}
	pos, ok := gutter.CalculateDiffIconYPosition(engine, diff, in.Left, in.OldInfo, in.NewInfo, geo.HeaderHeight)
	if !ok || !pos.Visible {
		return nil
	}

	iconX := geo.MiddleX + geo.MiddleWidth/2
	iconY := geo.MiddleTop + pos.RelativeY
	col := ColorFor(diff.Operation)
	var segs []Segment

	var leftBox models.BBox
	var hasLeft bool
	switch diff.Operation {
	case models.OperationDelete:
		leftBox, hasLeft = diff.OldBBox()
	case models.OperationInsert:
		leftBox, hasLeft = diff.PrevOldBBox()
	}
	if hasLeft {
		if a, ok := boxAnchor(engine, leftBox, diff.OldPage(), in.Left, in.OldInfo, geo.HeaderHeight); ok {
			segs = append(segs, Segment{
				X1: geo.LeftCanvasX + a.box[2]*a.scale, Y1: geo.LeftTop + a.y,
				X2: iconX - iconHalf, Y2: iconY,
				Color: col,
			})
		}
	}

	var rightBox models.BBox
	var hasRight bool
	switch diff.Operation {
	case models.OperationInsert:
		rightBox, hasRight = diff.NewBBox()
	case models.OperationDelete:
		rightBox, hasRight = diff.PrevNewBBox()
	}
	if hasRight {
		if a, ok := boxAnchor(engine, rightBox, diff.NewPage(), in.Right, in.NewInfo, geo.HeaderHeight); ok {
			startX := iconX + iconHalf
			stubEnd := math.Min(startX+stubLength, geo.MiddleX+geo.MiddleWidth-stubEdgeMargin)
			endY := geo.RightTop + a.y
			endX := geo.RightCanvasX + a.box[0]*a.scale
			segs = append(segs,
				Segment{X1: startX, Y1: iconY, X2: stubEnd, Y2: iconY, Color: col},
				Segment{X1: stubEnd, Y1: iconY, X2: geo.RightCanvasX, Y2: endY, Color: col},
				Segment{X1: geo.RightCanvasX, Y1: endY, X2: endX, Y2: endY, Color: col},
			)
		}
	}
	return segs
}

// RenderSVG writes a complete overlay sized to the container. Every call is a
// full redraw; coordinates are rounded to whole pixels.
func RenderSVG(w io.Writer, segments []Segment, width, height float64) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)
	for _, s := range segments {
		fmt.Fprintf(&buf, `  <line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1" opacity="1" stroke-linecap="round"/>`+"\n",
			round(s.X1), round(s.Y1), round(s.X2), round(s.Y2), s.Color.CSS)
	}
	buf.WriteString("</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// Rasterize strokes the segments onto dc with the same rounding and style as
// the SVG overlay.
func Rasterize(dc *gg.Context, segments []Segment) {
	dc.Push()
	defer dc.Pop()
	dc.SetLineWidth(1)
	dc.SetLineCap(gg.LineCapRound)
	for _, s := range segments {
		dc.SetColor(s.Color.RGBA)
		dc.DrawLine(float64(round(s.X1)), float64(round(s.Y1)), float64(round(s.X2)), float64(round(s.Y2)))
		dc.Stroke()
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
