// Package canvas renders document pages with their difference boxes onto a
// pool of recyclable in-memory surfaces.
package canvas

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Page badge geometry
const (
	labelPaddingX = 8
	labelHeight   = 24
	labelRadius   = 6
	labelMargin   = 10
	boxLineWidth  = 2
)

// ImageLoader resolves an image reference to a decoded image.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// RenderOptions are the renderer's constants.
type RenderOptions struct {
	PageSpacing     float64
	MaxCanvasHeight int
	ImageURLPrefix  string
	Locale          string
	LabelFace       font.Face
}

// OptionsFromConfig builds options from the viewer configuration, loading the
// label font it names.
func OptionsFromConfig(vc config.ViewerConfig) (RenderOptions, error) {
	face, locale, err := LoadLabelFace(vc.FontPath, vc.LabelLocale)
	if err != nil {
		return RenderOptions{}, err
	}
	return RenderOptions{
		PageSpacing:     vc.PageSpacing,
		MaxCanvasHeight: vc.MaxCanvasHeight,
		ImageURLPrefix:  vc.ImageURLPrefix,
		Locale:          locale,
		LabelFace:       face,
	}, nil
}

// RenderRequest describes one page render.
type RenderRequest struct {
	Info        *models.DocumentImageInfo
	PageIndex   int
	Mode        models.Side
	Differences models.PageDifferences
	Layout      []models.PageLayout
	BaseURL     string
	TaskID      string
}

// Renderer paints pages into pool slots.
type Renderer struct {
	images ImageLoader
	opts   RenderOptions
	logger zerolog.Logger
}

// NewRenderer creates a renderer reading images through images.
func NewRenderer(images ImageLoader, opts RenderOptions, logger zerolog.Logger) *Renderer {
	if opts.MaxCanvasHeight <= 0 {
		opts.MaxCanvasHeight = config.DefaultMaxCanvasHeight
	}
	if opts.ImageURLPrefix == "" {
		opts.ImageURLPrefix = config.DefaultImageURLPrefix
	}
	return &Renderer{
		images: images,
		opts:   opts,
		logger: logger.With().Str("component", "CanvasRenderer").Logger(),
	}
}

// PageImageURL returns the image reference of a 0-based page.
func PageImageURL(baseURL, prefix, taskID string, mode models.Side, pageIndex int) string {
	if baseURL != "" {
		return fmt.Sprintf("%s/page-%d.png", strings.TrimRight(baseURL, "/"), pageIndex+1)
	}
	return fmt.Sprintf("%s/%s/images/%s/page-%d.png", strings.TrimRight(prefix, "/"), taskID, mode, pageIndex+1)
}

// RenderPage sizes the slot for the page, loads its image and paints the
// image, the page's difference boxes and the page badge. Every paint step is
// skipped once the slot has been claimed by a newer render. A failed image
// load is logged and leaves the page blank; it is not returned as an error.
func (r *Renderer) RenderPage(ctx context.Context, slot *Slot, req RenderRequest) error {
	if req.Info == nil || req.PageIndex < 0 || req.PageIndex >= len(req.Info.Pages) || req.PageIndex >= len(req.Layout) {
		return common.NewValidationError("page_index", req.PageIndex, "page outside document")
	}

	pageInfo := req.Info.Pages[req.PageIndex]
	entry := req.Layout[req.PageIndex]
	canvasWidth := int(math.Round(pageInfo.Width * entry.Scale))
	scaledHeight := entry.Height
	isLast := req.PageIndex == len(req.Info.Pages)-1

	canvasHeight := scaledHeight
	if !isLast {
		canvasHeight += r.opts.PageSpacing
	}
	height := int(math.Ceil(canvasHeight))
	if height > r.opts.MaxCanvasHeight {
		height = r.opts.MaxCanvasHeight
	}

	token := slot.Prepare(req.PageIndex, entry.Y, canvasWidth, height)
	if !isLast && r.opts.PageSpacing > 0 {
		slot.Draw(token, func(_ *Canvas, dc *gg.Context) {
			dc.SetColor(SeparatorColor)
			dc.DrawRectangle(0, scaledHeight, float64(canvasWidth), r.opts.PageSpacing)
			dc.Fill()
		})
	}

	ref := PageImageURL(req.BaseURL, r.opts.ImageURLPrefix, req.TaskID, req.Mode, req.PageIndex)
	img, err := r.images.Load(ctx, ref)
	if err != nil {
		r.logger.Error().Err(err).Str("mode", string(req.Mode)).Int("page", req.PageIndex+1).Msg("Failed to render page")
		return nil
	}

	if !slot.Draw(token, func(_ *Canvas, dc *gg.Context) {
		drawScaled(dc, img, canvasWidth, scaledHeight)
	}) {
		r.logger.Debug().Int("page", req.PageIndex+1).Int("slot", slot.Index()).Msg("Discarded stale render")
		return nil
	}

	palette := PaletteFor(req.Mode)
	for _, p := range req.Differences[req.PageIndex+1] {
		box := p.SingleBBox
		diffIndex := p.DiffIndex
		if !slot.Draw(token, func(c *Canvas, dc *gg.Context) {
			x, y, w, h := box.Scaled(entry.Scale)
			dc.SetColor(palette.Fill)
			dc.DrawRectangle(x, y, w, h)
			dc.Fill()
			dc.SetColor(palette.Stroke)
			dc.SetLineWidth(boxLineWidth)
			dc.DrawRectangle(x, y, w, h)
			dc.Stroke()
			c.Boxes = append(c.Boxes, DrawnBox{X: x, Y: y, Width: w, Height: h, Side: req.Mode, DiffIndex: diffIndex})
		}) {
			return nil
		}
	}

	label := PageLabel(r.opts.Locale, string(req.Mode), req.PageIndex+1, len(req.Info.Pages))
	slot.Draw(token, func(c *Canvas, dc *gg.Context) {
		r.drawPageLabel(dc, label, canvasWidth)
		c.Label = label
	})
	return nil
}

func drawScaled(dc *gg.Context, img image.Image, width int, height float64) {
	dst, ok := dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	rect := image.Rect(0, 0, width, int(math.Round(height)))
	draw.ApproxBiLinear.Scale(dst, rect, img, img.Bounds(), draw.Over, nil)
}

// drawPageLabel pins the badge to the top-right of the page's own region.
func (r *Renderer) drawPageLabel(dc *gg.Context, label string, canvasWidth int) {
	dc.Push()
	defer dc.Pop()
	if r.opts.LabelFace != nil {
		dc.SetFontFace(r.opts.LabelFace)
	}
	textWidth, _ := dc.MeasureString(label)
	width := math.Ceil(textWidth) + labelPaddingX*2
	x := float64(canvasWidth) - width - labelMargin
	y := float64(labelMargin)

	dc.SetColor(LabelBackgroundColor)
	dc.DrawRoundedRectangle(x, y, width, labelHeight, labelRadius)
	dc.Fill()

	dc.SetColor(LabelTextColor)
	dc.DrawStringAnchored(label, x+labelPaddingX, y+labelHeight/2, 0, 0.5)
}
