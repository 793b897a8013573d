package models

// PageImageInfo describes one rendered page image in source pixels.
type PageImageInfo struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// DocumentImageInfo lists the page images of one document.
type DocumentImageInfo struct {
	Pages      []PageImageInfo `json:"pages"`
	TotalPages int             `json:"totalPages"`
}

// PageCount returns the number of pages actually described.
func (d *DocumentImageInfo) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// PageLayout is the derived vertical placement of a page inside its pane.
type PageLayout struct {
	Y       float64 `json:"y"`
	Height  float64 `json:"height"`
	Scale   float64 `json:"scale"`
	Visible bool    `json:"visible"`
}

// Bottom returns the Y coordinate just past the page image.
func (p PageLayout) Bottom() float64 {
	return p.Y + p.Height
}

// VisibleRange is the window of page indices that should hold a canvas.
type VisibleRange struct {
	Start        int   `json:"start"`
	End          int   `json:"end"`
	VisiblePages []int `json:"visiblePages"`
}

// Side selects a document: the old one renders on the left, the new one on the right.
type Side string

const (
	SideOld Side = "old"
	SideNew Side = "new"
)

// PaneSide names a scroll pane.
type PaneSide string

const (
	PaneLeft  PaneSide = "left"
	PaneRight PaneSide = "right"
)

// Other returns the opposite pane.
func (p PaneSide) Other() PaneSide {
	if p == PaneLeft {
		return PaneRight
	}
	return PaneLeft
}

// Document returns the document shown in the pane.
func (p PaneSide) Document() Side {
	if p == PaneLeft {
		return SideOld
	}
	return SideNew
}
