package reporter

import (
	"fmt"
	"html/template"
	"unicode/utf8"

	"github.com/aleister1102/ocrdiff/internal/differ"
	"github.com/aleister1102/ocrdiff/internal/models"
)

// DiffUtils renders the inline text diff of a difference
type DiffUtils struct {
	processor *differ.DiffProcessor
	maxLength int
}

// NewDiffUtils creates a new DiffUtils. Texts longer than maxLength runes are
// truncated before diffing; zero disables truncation.
func NewDiffUtils(maxLength int) *DiffUtils {
	return &DiffUtils{
		processor: differ.NewDiffProcessor(differ.DefaultDiffConfig()),
		maxLength: maxLength,
	}
}

// GenerateDiffHTML returns <del>/<ins> markup for the old and new text. Both
// texts are escaped by the diff renderer.
func (du *DiffUtils) GenerateDiffHTML(item *models.DifferenceItem) (template.HTML, differ.DiffStatistics) {
	diffs := du.processor.ProcessDiff(du.truncate(item.OldText), du.truncate(item.NewText))
	return template.HTML(du.processor.PrettyHTML(diffs)), differ.CalculateStats(diffs)
}

// CreateDiffSummary creates text summary of diff
func (du *DiffUtils) CreateDiffSummary(stats differ.DiffStatistics) string {
	if stats.IsIdentical {
		return "No textual changes detected."
	}
	return fmt.Sprintf("%d characters added (+), %d deleted (-).", stats.RunesAdded, stats.RunesDeleted)
}

func (du *DiffUtils) truncate(s string) string {
	if du.maxLength <= 0 || utf8.RuneCountInString(s) <= du.maxLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:du.maxLength]) + "…"
}
