package viewer

import (
	"github.com/aleister1102/ocrdiff/internal/gutter"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// Wheel scrolls a pane by deltaY as a mouse wheel would.
func (v *Viewer) Wheel(side models.PaneSide, deltaY float64) {
	p, ok := v.panes[side]
	if !ok || v.closed {
		return
	}
	v.sync.HandleWheel(side)
	p.SetScrollTop(p.scrollTop + deltaY)
}

// ScrollTo sets a pane's position programmatically.
func (v *Viewer) ScrollTo(side models.PaneSide, top float64) {
	if p, ok := v.panes[side]; ok && !v.closed {
		p.SetScrollTop(top)
	}
}

// MouseDown starts a scrollbar drag on side.
func (v *Viewer) MouseDown(side models.PaneSide) {
	if _, ok := v.panes[side]; ok && !v.closed {
		v.sync.HandleMouseDown(side)
	}
}

// DragTo moves the dragged pane's thumb.
func (v *Viewer) DragTo(side models.PaneSide, top float64) {
	v.ScrollTo(side, top)
}

// MouseUp ends a drag.
func (v *Viewer) MouseUp() {
	if !v.closed {
		v.sync.HandleMouseUp()
	}
}

// inGutter converts container coordinates to gutter coordinates.
func (v *Viewer) inGutter(x, y float64) (float64, float64, bool) {
	left := float64(v.cfg.PaneWidth)
	if x < left || x > left+float64(v.gutter.Width()) {
		return 0, 0, false
	}
	return x - left, y, true
}

// Click handles a click at container coordinates and reports whether it
// selected a difference.
func (v *Viewer) Click(x, y float64) bool {
	gx, gy, ok := v.inGutter(x, y)
	if !ok || v.closed {
		return false
	}
	return v.gutter.HandleClick(gx, gy)
}

// MouseMove returns the cursor for the pointer at container coordinates.
func (v *Viewer) MouseMove(x, y float64) string {
	gx, gy, ok := v.inGutter(x, y)
	if !ok {
		v.gutter.HandleMouseLeave()
		return gutter.CursorDefault
	}
	return v.gutter.HandleMouseMove(gx, gy)
}

// MouseLeave resets the gutter cursor.
func (v *Viewer) MouseLeave() {
	v.gutter.HandleMouseLeave()
}
