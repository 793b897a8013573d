package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/connector"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
)

var (
	paneBackground   = color.NRGBA{R: 0xf5, G: 0xf6, B: 0xf8, A: 0xff}
	headerBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	headerBorder     = color.NRGBA{R: 0xe4, G: 0xe7, B: 0xed, A: 0xff}
	headerText       = color.NRGBA{R: 0x30, G: 0x31, B: 0x33, A: 0xff}
)

const headerPadding = 12

// Snapshot composes the whole comparison as it is currently on screen: both
// headers, every displayed page canvas clipped to its pane, the gutter and
// the connector lines of the selection.
func (v *Viewer) Snapshot() image.Image {
	geo := v.Geometry()
	dc := gg.NewContext(int(math.Ceil(geo.Width)), int(math.Ceil(geo.Height)))
	if v.labelFace != nil {
		dc.SetFontFace(v.labelFace)
	}

	v.drawPane(dc, v.panes[models.PaneLeft], geo.LeftCanvasX)
	v.drawPane(dc, v.panes[models.PaneRight], geo.RightCanvasX)
	dc.DrawImage(v.gutter.Image(), int(geo.MiddleX), int(geo.MiddleTop))
	connector.Rasterize(dc, v.lines)
	return dc.Image()
}

func (v *Viewer) drawPane(dc *gg.Context, p *Pane, x float64) {
	header := v.cfg.HeaderHeight
	width := p.width

	dc.SetColor(headerBackground)
	dc.DrawRectangle(x, 0, width, header)
	dc.Fill()
	dc.SetColor(headerBorder)
	dc.DrawLine(x, header-0.5, x+width, header-0.5)
	dc.SetLineWidth(1)
	dc.Stroke()
	if header > 0 {
		dc.SetColor(headerText)
		if p.doc.FileName != "" {
			dc.DrawStringAnchored(p.doc.FileName, x+headerPadding, header/2, 0, 0.35)
		}
		if page := p.CurrentPage(); page > 0 {
			readout := fmt.Sprintf("%d / %d", page, p.PageCount())
			dc.DrawStringAnchored(readout, x+width-headerPadding, header/2, 1, 0.35)
		}
	}

	dc.Push()
	dc.DrawRectangle(x, header, width, p.clientHeight)
	dc.Clip()
	dc.SetColor(paneBackground)
	dc.DrawRectangle(x, header, width, p.clientHeight)
	dc.Fill()
	for _, slot := range p.pool.Slots() {
		c, img := slot.Snapshot()
		if !c.Display || img == nil {
			continue
		}
		top := header + c.Top - p.scrollTop
		if top > header+p.clientHeight || top+float64(c.Height) < header {
			continue
		}
		dc.DrawImage(img, int(math.Round(x)), int(math.Round(top)))
	}
	dc.ResetClip()
	dc.Pop()
}

// WriteSnapshotPNG encodes Snapshot as PNG.
func (v *Viewer) WriteSnapshotPNG(w io.Writer) error {
	if err := png.Encode(w, v.Snapshot()); err != nil {
		return common.WrapError(err, "failed to encode snapshot")
	}
	return nil
}

// WriteConnectorSVG writes the connector overlay for the current selection.
func (v *Viewer) WriteConnectorSVG(w io.Writer) error {
	geo := v.Geometry()
	if err := connector.RenderSVG(w, v.lines, geo.Width, geo.Height); err != nil {
		return common.WrapError(err, "failed to write connector overlay")
	}
	return nil
}
