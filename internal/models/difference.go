package models

import "encoding/json"

// Operation is the kind of change a difference describes.
type Operation string

const (
	OperationDelete Operation = "DELETE"
	OperationInsert Operation = "INSERT"
)

// BBox is an axis-aligned box (x1, y1, x2, y2) in source-image pixels.
type BBox [4]float64

// ToBBox converts a wire array; fewer than four numbers means absent.
func ToBBox(v []float64) (BBox, bool) {
	if len(v) < 4 {
		return BBox{}, false
	}
	return BBox{v[0], v[1], v[2], v[3]}, true
}

// Scaled returns the box as x, y, width, height after multiplying by scale.
func (b BBox) Scaled(scale float64) (x, y, w, h float64) {
	return b[0] * scale, b[1] * scale, (b[2] - b[0]) * scale, (b[3] - b[1]) * scale
}

// CenterY returns the vertical center of the box after scaling.
func (b BBox) CenterY(scale float64) float64 {
	_, y, _, h := b.Scaled(scale)
	return y + h/2
}

// DifferenceItem is one difference as delivered by the comparison backend.
// Every locating field is optional; use the accessor methods instead of the raw fields.
type DifferenceItem struct {
	Operation Operation `json:"operation"`

	PageA     int   `json:"pageA,omitempty"`
	PageB     int   `json:"pageB,omitempty"`
	Page      int   `json:"page,omitempty"`
	PageAList []int `json:"pageAList,omitempty"`
	PageBList []int `json:"pageBList,omitempty"`

	OldBbox     []float64   `json:"oldBbox,omitempty"`
	NewBbox     []float64   `json:"newBbox,omitempty"`
	PrevOldBbox []float64   `json:"prevOldBbox,omitempty"`
	PrevNewBbox []float64   `json:"prevNewBbox,omitempty"`
	OldBboxes   [][]float64 `json:"oldBboxes,omitempty"`
	NewBboxes   [][]float64 `json:"newBboxes,omitempty"`

	OldText         string          `json:"oldText,omitempty"`
	NewText         string          `json:"newText,omitempty"`
	AllTextA        []string        `json:"allTextA,omitempty"`
	AllTextB        []string        `json:"allTextB,omitempty"`
	TextStartIndexA int             `json:"textStartIndexA,omitempty"`
	TextStartIndexB int             `json:"textStartIndexB,omitempty"`
	DiffRangesA     json.RawMessage `json:"diffRangesA,omitempty"`
	DiffRangesB     json.RawMessage `json:"diffRangesB,omitempty"`
}

// OldPage is the anchor page in the old document (pageA, then page, then 1).
func (d *DifferenceItem) OldPage() int {
	return firstPositive(d.PageA, d.Page, 1)
}

// NewPage is the anchor page in the new document (pageB, then page, then 1).
func (d *DifferenceItem) NewPage() int {
	return firstPositive(d.PageB, d.Page, 1)
}

func (d *DifferenceItem) OldBBox() (BBox, bool)     { return ToBBox(d.OldBbox) }
func (d *DifferenceItem) NewBBox() (BBox, bool)     { return ToBBox(d.NewBbox) }
func (d *DifferenceItem) PrevOldBBox() (BBox, bool) { return ToBBox(d.PrevOldBbox) }
func (d *DifferenceItem) PrevNewBBox() (BBox, bool) { return ToBBox(d.PrevNewBbox) }

// OwnSide is the document a difference belongs to: old for DELETE, new for INSERT.
func (d *DifferenceItem) OwnSide() Side {
	if d.Operation == OperationInsert {
		return SideNew
	}
	return SideOld
}

// OwnBBox is the clickable box of the difference in its own document.
func (d *DifferenceItem) OwnBBox() (BBox, bool) {
	if d.Operation == OperationDelete {
		return d.OldBBox()
	}
	return d.NewBBox()
}

// PrimarySpan normalizes the multi-page and single-page wire forms of the
// difference's own document into one Span. The single-page form sits on
// OldPage/NewPage, the same page the gutter anchors to. It returns nil when
// the item carries no usable box or has an unknown operation.
func (d *DifferenceItem) PrimarySpan() Span {
	var (
		boxes  [][]float64
		pages  []int
		single []float64
		page   int
	)
	switch d.Operation {
	case OperationDelete:
		boxes, pages, single, page = d.OldBboxes, d.PageAList, d.OldBbox, d.OldPage()
	case OperationInsert:
		boxes, pages, single, page = d.NewBboxes, d.PageBList, d.NewBbox, d.NewPage()
	default:
		return nil
	}

	if len(boxes) > 0 && len(pages) > 0 {
		span := MultiPageSpan{}
		for i, raw := range boxes {
			if i >= len(pages) {
				break
			}
			box, ok := ToBBox(raw)
			if !ok {
				continue
			}
			span.Entries = append(span.Entries, PageBox{Page: pages[i], BBox: box, Index: i})
		}
		return span
	}

	if box, ok := ToBBox(single); ok {
		return SinglePageSpan{Page: page, BBox: box}
	}
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// PageBox is one box located on one page.
type PageBox struct {
	Page  int
	BBox  BBox
	Index int
}

// Span is the location of a difference in its own document. It is either a
// SinglePageSpan or a MultiPageSpan.
type Span interface {
	Boxes() []PageBox
	isSpan()
}

// SinglePageSpan is the singular oldBbox/newBbox form.
type SinglePageSpan struct {
	Page int
	BBox BBox
}

func (s SinglePageSpan) Boxes() []PageBox {
	return []PageBox{{Page: s.Page, BBox: s.BBox}}
}

func (SinglePageSpan) isSpan() {}

// MultiPageSpan is the oldBboxes+pageAList / newBboxes+pageBList form.
type MultiPageSpan struct {
	Entries []PageBox
}

func (m MultiPageSpan) Boxes() []PageBox {
	return m.Entries
}

func (MultiPageSpan) isSpan() {}

// ProcessedDifferenceItem is one box of a difference bucketed on its page.
type ProcessedDifferenceItem struct {
	Item       *DifferenceItem
	DiffIndex  int
	SingleBBox BBox
	BBoxIndex  int
}

// PageDifferences buckets processed boxes by 1-based page number.
type PageDifferences map[int][]ProcessedDifferenceItem

// FilterMode restricts which differences are listed.
type FilterMode string

const (
	FilterAll    FilterMode = "ALL"
	FilterDelete FilterMode = "DELETE"
	FilterInsert FilterMode = "INSERT"
)

// Accepts reports whether op passes the filter.
func (f FilterMode) Accepts(op Operation) bool {
	switch f {
	case FilterDelete:
		return op == OperationDelete
	case FilterInsert:
		return op == OperationInsert
	default:
		return true
	}
}
