// Package differ groups server-reported differences by page and derives the
// filtered lists, counts and inline text diffs shown next to them.
package differ

import "github.com/aleister1102/ocrdiff/internal/models"

// PreprocessDifferences flattens every difference into one entry per
// (page, box) on its own document and buckets them by page number. Boxes with
// identical coordinates on the same page are reported once; bucket order
// follows input order. Entries with a non-positive page are skipped.
func PreprocessDifferences(diffs []models.DifferenceItem) models.PageDifferences {
	result := make(models.PageDifferences)

	for i := range diffs {
		item := &diffs[i]
		span := item.PrimarySpan()
		if span == nil {
			continue
		}
		for _, pb := range span.Boxes() {
			if pb.Page <= 0 {
				continue
			}
			if containsBox(result[pb.Page], pb.BBox) {
				continue
			}
			result[pb.Page] = append(result[pb.Page], models.ProcessedDifferenceItem{
				Item:       item,
				DiffIndex:  i,
				SingleBBox: pb.BBox,
				BBoxIndex:  pb.Index,
			})
		}
	}

	return result
}

func containsBox(bucket []models.ProcessedDifferenceItem, box models.BBox) bool {
	for _, existing := range bucket {
		if existing.SingleBBox == box {
			return true
		}
	}
	return false
}

// FilterDifferences returns the differences accepted by mode, in input order.
func FilterDifferences(diffs []models.DifferenceItem, mode models.FilterMode) []models.DifferenceItem {
	if mode == "" || mode == models.FilterAll {
		return diffs
	}
	filtered := make([]models.DifferenceItem, 0, len(diffs))
	for _, d := range diffs {
		if mode.Accepts(d.Operation) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// Summary counts differences per operation.
type Summary struct {
	Total   int `json:"total"`
	Deletes int `json:"deletes"`
	Inserts int `json:"inserts"`
}

// Summarize counts the differences by operation.
func Summarize(diffs []models.DifferenceItem) Summary {
	s := Summary{Total: len(diffs)}
	for _, d := range diffs {
		switch d.Operation {
		case models.OperationDelete:
			s.Deletes++
		case models.OperationInsert:
			s.Inserts++
		}
	}
	return s
}

// ForSide narrows page buckets to what a pane of the given side paints: old
// panes draw DELETE boxes and new panes draw INSERT boxes.
func ForSide(groups models.PageDifferences, side models.Side) models.PageDifferences {
	out := make(models.PageDifferences, len(groups))
	for page, bucket := range groups {
		for _, p := range bucket {
			if p.Item.OwnSide() == side {
				out[page] = append(out[page], p)
			}
		}
	}
	return out
}
