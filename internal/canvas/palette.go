package canvas

import (
	"image/color"

	"github.com/aleister1102/ocrdiff/internal/models"
)

// Palette is the stroke/fill pair for a difference box.
type Palette struct {
	Stroke    color.NRGBA
	Fill      color.NRGBA
	Highlight color.NRGBA
}

var (
	DeletePalette = Palette{
		Stroke:    color.NRGBA{R: 0xf5, G: 0x6c, B: 0x6c, A: 0xff},
		Fill:      color.NRGBA{R: 245, G: 108, B: 108, A: alpha(0.1)},
		Highlight: color.NRGBA{R: 255, G: 99, B: 99, A: alpha(0.4)},
	}
	InsertPalette = Palette{
		Stroke:    color.NRGBA{R: 0x67, G: 0xc2, B: 0x3a, A: 0xff},
		Fill:      color.NRGBA{R: 103, G: 194, B: 58, A: alpha(0.1)},
		Highlight: color.NRGBA{R: 103, G: 194, B: 58, A: alpha(0.4)},
	}

	SeparatorColor       = color.NRGBA{R: 0xf5, G: 0xf6, B: 0xf8, A: 0xff}
	LabelBackgroundColor = color.NRGBA{A: alpha(0.45)}
	LabelTextColor       = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// PaletteFor returns the palette a pane of the given side paints with.
func PaletteFor(side models.Side) Palette {
	if side == models.SideNew {
		return InsertPalette
	}
	return DeletePalette
}

func alpha(a float64) uint8 {
	return uint8(a*255 + 0.5)
}
