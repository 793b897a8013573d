package gutter

import (
	"image/color"

	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
)

// Icon geometry
const (
	IconSize      = 20
	iconRadius    = 4
	iconBorder    = 1.5
	iconBarLength = 10
	iconBarWidth  = 2
)

type iconStyle struct {
	from, to, border color.NRGBA
}

var (
	insertIcon = iconStyle{
		from:   color.NRGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
		to:     color.NRGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
		border: color.NRGBA{R: 0x1b, G: 0x5e, B: 0x20, A: 0xff},
	}
	deleteIcon = iconStyle{
		from:   color.NRGBA{R: 0xf4, G: 0x43, B: 0x36, A: 0xff},
		to:     color.NRGBA{R: 0xc6, G: 0x28, B: 0x28, A: 0xff},
		border: color.NRGBA{R: 0x8e, G: 0x1b, B: 0x1b, A: 0xff},
	}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// DrawDiffIcon paints the operation badge centred on (x, y): a rounded square
// with a diagonal gradient, a dark border, a white "+" or "-" and a soft
// highlight over its top third.
func DrawDiffIcon(dc *gg.Context, x, y float64, op models.Operation) {
	style := deleteIcon
	if op == models.OperationInsert {
		style = insertIcon
	}
	half := float64(IconSize) / 2
	left, top := x-half, y-half

	dc.Push()
	defer dc.Pop()

	grad := gg.NewLinearGradient(left, top, left+IconSize, top+IconSize)
	grad.AddColorStop(0, style.from)
	grad.AddColorStop(1, style.to)
	dc.SetFillStyle(grad)
	dc.DrawRoundedRectangle(left, top, IconSize, IconSize, iconRadius)
	dc.Fill()

	dc.SetColor(style.border)
	dc.SetLineWidth(iconBorder)
	dc.DrawRoundedRectangle(left, top, IconSize, IconSize, iconRadius)
	dc.Stroke()

	dc.SetColor(white)
	barHalf := float64(iconBarLength) / 2
	dc.DrawRectangle(x-barHalf, y-iconBarWidth/2.0, iconBarLength, iconBarWidth)
	if op == models.OperationInsert {
		dc.DrawRectangle(x-iconBarWidth/2.0, y-barHalf, iconBarWidth, iconBarLength)
	}
	dc.Fill()

	third := float64(IconSize) / 3
	shine := gg.NewLinearGradient(left, top, left, top+third)
	shine.AddColorStop(0, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x59})
	shine.AddColorStop(1, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0})
	dc.SetFillStyle(shine)
	dc.DrawRoundedRectangle(left+1, top+1, IconSize-2, third, iconRadius-1)
	dc.Fill()
}
