package models

// ClickableArea is a hit-test rectangle registered for a gutter icon.
type ClickableArea struct {
	ID        string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	DiffIndex int
	Operation Operation
	BBox      BBox
	Diff      *DifferenceItem
}

// Contains reports whether the point lies inside the area (edges inclusive).
func (a ClickableArea) Contains(x, y float64) bool {
	return x >= a.X && x <= a.X+a.Width && y >= a.Y && y <= a.Y+a.Height
}

// IconPosition is where a difference's gutter icon sits.
type IconPosition struct {
	AbsoluteY float64
	RelativeY float64
	Visible   bool
}

// PaneMetrics is a read-only view of a pane's scroll geometry.
type PaneMetrics struct {
	ScrollTop    float64
	ClientHeight float64
	Width        float64
}
