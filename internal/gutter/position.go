package gutter

import (
	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// visibilityMargin lets icons slightly outside the viewport still render.
const visibilityMargin = 50

// AnchorY returns the document Y, in left-pane coordinates, that a
// difference's gutter icon is attached to. Both documents are laid out at
// containerWidth, the left pane's width.
//
// DELETE anchors to oldBbox on the old page. INSERT anchors to prevOldBbox on
// the old page when present; otherwise the vertical fraction of newBbox on its
// new page is mapped onto the same page index of the old document, clamped to
// the last old page.
func AnchorY(engine *layout.Engine, diff *models.DifferenceItem, containerWidth float64, oldInfo, newInfo *models.DocumentImageInfo) (float64, bool) {
	if diff == nil || oldInfo == nil {
		return 0, false
	}

	var box models.BBox
	var ok bool
	switch diff.Operation {
	case models.OperationDelete:
		box, ok = diff.OldBBox()
	case models.OperationInsert:
		box, ok = diff.PrevOldBBox()
		if !ok {
			return mapNewToOld(engine, diff, containerWidth, oldInfo, newInfo)
		}
	default:
		return 0, false
	}
	if !ok {
		return 0, false
	}

	pages := engine.CalculatePageLayout(oldInfo, containerWidth)
	idx := diff.OldPage() - 1
	if idx < 0 || idx >= len(pages) {
		return 0, false
	}
	return pages[idx].Y + box.CenterY(pages[idx].Scale), true
}

func mapNewToOld(engine *layout.Engine, diff *models.DifferenceItem, containerWidth float64, oldInfo, newInfo *models.DocumentImageInfo) (float64, bool) {
	box, ok := diff.NewBBox()
	if !ok || newInfo == nil {
		return 0, false
	}

	newPages := engine.CalculatePageLayout(newInfo, containerWidth)
	newIdx := diff.NewPage() - 1
	if newIdx < 0 || newIdx >= len(newPages) {
		return 0, false
	}
	src := newPages[newIdx]
	if src.Height <= 0 {
		return 0, false
	}
	fraction := box.CenterY(src.Scale) / src.Height

	oldPages := engine.CalculatePageLayout(oldInfo, containerWidth)
	oldIdx := newIdx
	if oldIdx > len(oldPages)-1 {
		oldIdx = len(oldPages) - 1
	}
	if oldIdx < 0 {
		return 0, false
	}
	dst := oldPages[oldIdx]
	return dst.Y + fraction*dst.Height, true
}

// CalculateDiffIconYPosition places a difference's icon relative to the
// gutter: RelativeY = AbsoluteY - scrollTop + headerHeight. The icon is
// visible while RelativeY stays within 50px of the viewport.
func CalculateDiffIconYPosition(engine *layout.Engine, diff *models.DifferenceItem, left models.PaneMetrics, oldInfo, newInfo *models.DocumentImageInfo, headerHeight float64) (models.IconPosition, bool) {
	abs, ok := AnchorY(engine, diff, left.Width, oldInfo, newInfo)
	if !ok {
		return models.IconPosition{}, false
	}
	rel := abs - left.ScrollTop + headerHeight
	return models.IconPosition{
		AbsoluteY: abs,
		RelativeY: rel,
		Visible:   rel >= headerHeight-visibilityMargin && rel <= left.ClientHeight+headerHeight+visibilityMargin,
	}, true
}
