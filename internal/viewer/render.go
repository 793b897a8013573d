package viewer

import (
	"math"

	"github.com/aleister1102/ocrdiff/internal/canvas"
	"github.com/aleister1102/ocrdiff/internal/connector"
	"github.com/aleister1102/ocrdiff/internal/gutter"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// onPaneScroll is the scroll event handler of both panes.
func (v *Viewer) onPaneScroll(side models.PaneSide) {
	if v.closed {
		return
	}
	v.sync.HandleScroll(side)
	v.updateVisible(side)
	if side == models.PaneLeft {
		v.renderGutter()
		return
	}
	v.updateConnectors()
}

// refresh re-renders everything for the current positions.
func (v *Viewer) refresh() {
	v.updateVisible(models.PaneLeft)
	v.updateVisible(models.PaneRight)
	v.renderGutter()
}

// updateVisible recomputes a pane's page window and starts a render for every
// page that moved into a different slot.
func (v *Viewer) updateVisible(side models.PaneSide) {
	p := v.panes[side]
	if p.doc.Info == nil {
		return
	}
	p.visible = v.engine.UpdateVisibleCanvases(p.scrollTop, p.clientHeight, p.layout)
	for _, a := range p.pool.Assign(p.visible.VisiblePages) {
		v.startRender(p, a)
	}
}

func (v *Viewer) startRender(p *Pane, a canvas.Assignment) {
	req := canvas.RenderRequest{
		Info:        p.doc.Info,
		PageIndex:   a.PageIndex,
		Mode:        p.side.Document(),
		Differences: p.diffs,
		Layout:      p.layout,
		BaseURL:     p.doc.BaseURL,
		TaskID:      v.content.TaskID,
	}
	v.renders.start()
	go func() {
		defer v.renders.done()
		if err := v.renderer.RenderPage(v.ctx, a.Slot, req); err != nil {
			v.logger.Warn().Err(err).Str("side", string(p.side)).Int("page", a.PageIndex+1).Msg("Page render rejected")
		}
	}()
}

// renderGutter repaints the icons for the left pane position, then the
// connector lines that hang off them.
func (v *Viewer) renderGutter() {
	left := v.panes[models.PaneLeft]
	if left.doc.Info == nil {
		return
	}
	v.gutter.Render(v.filtered, left.Metrics(), left.doc.Info, v.panes[models.PaneRight].doc.Info, v.updateConnectors)
}

// Geometry places both panes and the gutter side by side under a shared
// header band.
func (v *Viewer) Geometry() connector.Geometry {
	paneW := float64(v.cfg.PaneWidth)
	gutterW := float64(v.gutter.Width())
	return connector.Geometry{
		Width:        2*paneW + gutterW,
		Height:       v.cfg.HeaderHeight + float64(v.cfg.PaneHeight),
		LeftCanvasX:  0,
		MiddleX:      paneW,
		MiddleWidth:  gutterW,
		RightCanvasX: paneW + gutterW,
		HeaderHeight: v.cfg.HeaderHeight,
	}
}

func (v *Viewer) updateConnectors() {
	_, diff, ok := v.Selected()
	if !ok {
		v.lines = nil
		return
	}
	left, right := v.panes[models.PaneLeft], v.panes[models.PaneRight]
	v.lines = connector.Compute(v.engine, v.Geometry(), connector.Input{
		Selected: diff,
		Left:     left.Metrics(),
		Right:    right.Metrics(),
		OldInfo:  left.doc.Info,
		NewInfo:  right.doc.Info,
	})
}

// Connectors returns the connector lines of the selected difference.
func (v *Viewer) Connectors() []connector.Segment {
	return append([]connector.Segment(nil), v.lines...)
}

// jumpTo scrolls both panes so the difference sits at the marker line, then
// re-baselines once the jump has settled. A pane without an anchor keeps its
// position.
func (v *Viewer) jumpTo(diff *models.DifferenceItem) {
	left, right := v.panes[models.PaneLeft], v.panes[models.PaneRight]
	leftTarget, rightTarget := left.scrollTop, right.scrollTop

	if y, ok := gutter.AnchorY(v.engine, diff, left.width, left.doc.Info, right.doc.Info); ok {
		leftTarget = math.Max(0, y-v.markerY(left))
	}
	if y, ok := rightAnchorY(diff, right.layout); ok {
		rightTarget = math.Max(0, y-v.markerY(right))
	}

	if v.jumpTimer != nil {
		v.jumpTimer.Stop()
	}
	v.jumping = true
	left.SetScrollTop(leftTarget)
	right.SetScrollTop(rightTarget)
	v.logger.Debug().
		Str("operation", string(diff.Operation)).
		Float64("left", left.scrollTop).
		Float64("right", right.scrollTop).
		Msg("Jumped to difference")

	v.jumpTimer = v.sched.AfterFunc(v.cfg.JumpRenderDelay(), func() {
		v.jumpTimer = nil
		v.jumping = false
		if v.closed {
			return
		}
		v.sync.SyncInitialPositions()
		v.refresh()
	})
}

func (v *Viewer) markerY(p *Pane) float64 {
	return p.clientHeight*v.cfg.MarkerRatio + v.cfg.MarkerOffset
}

// rightAnchorY is the new-document Y of a difference: newBbox for INSERT,
// prevNewBbox for DELETE.
func rightAnchorY(diff *models.DifferenceItem, pages []models.PageLayout) (float64, bool) {
	var box models.BBox
	var ok bool
	switch diff.Operation {
	case models.OperationInsert:
		box, ok = diff.NewBBox()
	case models.OperationDelete:
		box, ok = diff.PrevNewBBox()
	}
	if !ok {
		return 0, false
	}
	idx := diff.NewPage() - 1
	if idx < 0 || idx >= len(pages) {
		return 0, false
	}
	return pages[idx].Y + box.CenterY(pages[idx].Scale), true
}
