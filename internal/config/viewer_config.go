package config

import "time"

// Viewer defaults
const (
	DefaultPageSpacing        = 20
	DefaultScrollBuffer       = 1500
	DefaultMinRenderedPages   = 8
	DefaultMaxVisibleCanvases = 12
	DefaultMaxCanvasHeight    = 32767
	DefaultGutterWidth        = 80
	DefaultHeaderHeight       = 40
	DefaultJumpRenderDelayMs  = 200
	DefaultImageURLPrefix     = "/api/gpu-ocr/files/tasks"
)

// ViewerConfig holds geometry and rendering settings of the dual-pane viewer.
type ViewerConfig struct {
	PageSpacing        float64 `json:"page_spacing,omitempty" yaml:"page_spacing,omitempty" validate:"omitempty,min=0"`
	ScrollBuffer       float64 `json:"scroll_buffer,omitempty" yaml:"scroll_buffer,omitempty" validate:"omitempty,min=0"`
	MinRenderedPages   int     `json:"min_rendered_pages,omitempty" yaml:"min_rendered_pages,omitempty" validate:"omitempty,min=1"`
	MaxVisibleCanvases int     `json:"max_visible_canvases,omitempty" yaml:"max_visible_canvases,omitempty" validate:"omitempty,min=1,gtefield=MinRenderedPages"`
	MaxCanvasHeight    int     `json:"max_canvas_height,omitempty" yaml:"max_canvas_height,omitempty" validate:"omitempty,min=1"`

	// PaneWidth and PaneHeight size each document pane's viewport.
	PaneWidth    int     `json:"pane_width,omitempty" yaml:"pane_width,omitempty" validate:"omitempty,min=50"`
	PaneHeight   int     `json:"pane_height,omitempty" yaml:"pane_height,omitempty" validate:"omitempty,min=50"`
	GutterWidth  int     `json:"gutter_width,omitempty" yaml:"gutter_width,omitempty" validate:"omitempty,min=20"`
	HeaderHeight float64 `json:"header_height,omitempty" yaml:"header_height,omitempty" validate:"omitempty,min=0"`

	JumpRenderDelayMs int `json:"jump_render_delay_ms,omitempty" yaml:"jump_render_delay_ms,omitempty" validate:"omitempty,min=0"`
	// MarkerRatio places a selected difference at this fraction of the viewport height.
	MarkerRatio  float64 `json:"marker_ratio,omitempty" yaml:"marker_ratio,omitempty" validate:"omitempty,min=0,max=1"`
	MarkerOffset float64 `json:"marker_offset,omitempty" yaml:"marker_offset,omitempty"`

	ImageURLPrefix string `json:"image_url_prefix,omitempty" yaml:"image_url_prefix,omitempty"`
	LabelLocale    string `json:"label_locale,omitempty" yaml:"label_locale,omitempty" validate:"omitempty,labellocale"`
	// FontPath points to a TrueType font able to render the label locale.
	FontPath string `json:"font_path,omitempty" yaml:"font_path,omitempty" validate:"omitempty,fileexists"`
}

// NewDefaultViewerConfig creates default viewer configuration
func NewDefaultViewerConfig() ViewerConfig {
	return ViewerConfig{
		PageSpacing:        DefaultPageSpacing,
		ScrollBuffer:       DefaultScrollBuffer,
		MinRenderedPages:   DefaultMinRenderedPages,
		MaxVisibleCanvases: DefaultMaxVisibleCanvases,
		MaxCanvasHeight:    DefaultMaxCanvasHeight,
		PaneWidth:          800,
		PaneHeight:         900,
		GutterWidth:        DefaultGutterWidth,
		HeaderHeight:       DefaultHeaderHeight,
		JumpRenderDelayMs:  DefaultJumpRenderDelayMs,
		MarkerRatio:        0.25,
		MarkerOffset:       20,
		ImageURLPrefix:     DefaultImageURLPrefix,
		LabelLocale:        "zh",
	}
}

// JumpRenderDelay returns the post-jump render delay as time.Duration
func (vc ViewerConfig) JumpRenderDelay() time.Duration {
	return time.Duration(vc.JumpRenderDelayMs) * time.Millisecond
}
