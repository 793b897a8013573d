package canvas

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// Label locales
const (
	LocaleZH = "zh"
	LocaleEN = "en"
)

// LabelFontSize matches a bold 13px UI label.
const LabelFontSize = 13

// LoadLabelFace returns the badge font and the locale it can render. Without a
// font file the bundled Go font is used, which has no CJK glyphs, so the
// locale falls back to English.
func LoadLabelFace(fontPath, locale string) (font.Face, string, error) {
	data := gobold.TTF
	if fontPath == "" {
		locale = LocaleEN
	} else {
		raw, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read font %s: %w", fontPath, err)
		}
		data = raw
	}
	if locale != LocaleEN {
		locale = LocaleZH
	}

	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    LabelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return face, locale, nil
}

// PageLabel formats the page badge text.
func PageLabel(locale string, side string, page, total int) string {
	if locale == LocaleEN {
		name := "Old"
		if side == "new" {
			name = "New"
		}
		return fmt.Sprintf("%s page %d / %d", name, page, total)
	}
	name := "旧"
	if side == "new" {
		name = "新"
	}
	return fmt.Sprintf("%s 第 %d / %d 页", name, page, total)
}
