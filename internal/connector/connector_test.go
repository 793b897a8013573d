package connector

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pages(n int, w, h float64) *models.DocumentImageInfo {
	info := &models.DocumentImageInfo{TotalPages: n}
	for i := 0; i < n; i++ {
		info.Pages = append(info.Pages, models.PageImageInfo{Width: w, Height: h})
	}
	return info
}

var geo = Geometry{
	Width:        1200,
	Height:       900,
	LeftCanvasX:  10,
	MiddleX:      510,
	MiddleWidth:  80,
	RightCanvasX: 600,
	HeaderHeight: 40,
}

func input(diff *models.DifferenceItem) Input {
	return Input{
		Selected: diff,
		Left:     models.PaneMetrics{ScrollTop: 600, ClientHeight: 800, Width: 500},
		Right:    models.PaneMetrics{ScrollTop: 0, ClientHeight: 800, Width: 500},
		OldInfo:  pages(2, 1000, 1400),
		NewInfo:  pages(3, 1000, 2000),
	}
}

func deleteDiff() *models.DifferenceItem {
	return &models.DifferenceItem{
		Operation:   models.OperationDelete,
		PageA:       2,
		PageB:       1,
		OldBbox:     []float64{100, 200, 300, 400},
		PrevNewBbox: []float64{50, 100, 250, 300},
	}
}

func TestCompute_DeleteWithPrevNewBbox(t *testing.T) {
	segs := Compute(layout.NewEngine(layout.DefaultOptions()), geo, input(deleteDiff()))

	require.Len(t, segs, 4)
	assert.Equal(t, Segment{X1: 160, Y1: 310, X2: 540, Y2: 310, Color: DeleteColor}, segs[0])
	assert.Equal(t, Segment{X1: 560, Y1: 310, X2: 580, Y2: 310, Color: DeleteColor}, segs[1])
	assert.Equal(t, Segment{X1: 580, Y1: 310, X2: 600, Y2: 140, Color: DeleteColor}, segs[2])
	assert.Equal(t, Segment{X1: 600, Y1: 140, X2: 625, Y2: 140, Color: DeleteColor}, segs[3])
}

func TestCompute_DeleteWithoutRightAnchor(t *testing.T) {
	diff := deleteDiff()
	diff.PrevNewBbox = nil

	segs := Compute(layout.NewEngine(layout.DefaultOptions()), geo, input(diff))

	require.Len(t, segs, 1)
	assert.Equal(t, float64(540), segs[0].X2)
}

func TestCompute_InsertWithoutPrevOldBbox(t *testing.T) {
	// Icon is placed by remapping the new box; only the right side is drawn.
	diff := &models.DifferenceItem{Operation: models.OperationInsert, PageB: 2, NewBbox: []float64{0, 0, 100, 200}}
	in := input(diff)
	in.Left.ScrollTop = 0

	segs := Compute(layout.NewEngine(layout.DefaultOptions()), geo, in)

	require.Len(t, segs, 3)
	for _, s := range segs {
		assert.Equal(t, InsertColor, s.Color)
	}
	assert.Equal(t, float64(600), segs[2].X1)
	assert.Equal(t, float64(600), segs[2].X2, "box starts at the canvas edge")
}

func TestCompute_StubStaysInsideGutter(t *testing.T) {
	narrow := geo
	narrow.MiddleWidth = 40

	segs := Compute(layout.NewEngine(layout.DefaultOptions()), narrow, input(deleteDiff()))

	require.Len(t, segs, 4)
	assert.Equal(t, float64(540), segs[1].X1)
	assert.Equal(t, float64(545), segs[1].X2)
}

func TestCompute_NothingWhenHiddenOrUnselected(t *testing.T) {
	engine := layout.NewEngine(layout.DefaultOptions())
	assert.Nil(t, Compute(engine, geo, input(nil)))

	in := input(deleteDiff())
	in.Left.ScrollTop = 0
	assert.Nil(t, Compute(engine, geo, in), "icon below the viewport")
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "rgba(255, 99, 99, 0.8)", ColorFor(models.OperationDelete).CSS)
	assert.Equal(t, "rgba(103, 194, 58, 0.8)", ColorFor(models.OperationInsert).CSS)
	assert.Equal(t, "rgba(128, 128, 128, 0.8)", ColorFor("MOVE").CSS)
}

func TestRenderSVG(t *testing.T) {
	segs := []Segment{
		{X1: 10.4, Y1: 20.6, X2: 30, Y2: 40, Color: DeleteColor},
		{X1: 1, Y1: 2, X2: 3, Y2: 4, Color: InsertColor},
	}
	var buf bytes.Buffer

	require.NoError(t, RenderSVG(&buf, segs, 1200, 900))

	assert.Contains(t, buf.String(), `viewBox="0 0 1200 900"`)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	svg := doc.Find("svg")
	require.Equal(t, 1, svg.Length())
	assert.Equal(t, "1200", svg.AttrOr("width", ""))
	assert.Equal(t, "900", svg.AttrOr("height", ""))

	lines := doc.Find("line")
	require.Equal(t, 2, lines.Length())
	first := lines.First()
	assert.Equal(t, "10", first.AttrOr("x1", ""))
	assert.Equal(t, "21", first.AttrOr("y1", ""))
	assert.Equal(t, "rgba(255, 99, 99, 0.8)", first.AttrOr("stroke", ""))
	assert.Equal(t, "1", first.AttrOr("stroke-width", ""))
	assert.Equal(t, "round", first.AttrOr("stroke-linecap", ""))
}

func TestRenderSVG_EmptyIsFullRedraw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, nil, 300, 200))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("line").Length())
	assert.Equal(t, 1, doc.Find("svg").Length())
}

func TestRasterize(t *testing.T) {
	dc := gg.NewContext(200, 100)
	Rasterize(dc, []Segment{{X1: 10, Y1: 50, X2: 190, Y2: 50, Color: InsertColor}})

	img := dc.Image()
	_, _, _, onLine := img.At(100, 50).RGBA()
	_, _, _, offLine := img.At(100, 10).RGBA()
	assert.Greater(t, onLine, uint32(0))
	assert.Equal(t, uint32(0), offLine)
}
