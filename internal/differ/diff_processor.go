package differ

import (
	"time"
	"unicode/utf8"

	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffConfig tunes inline text diffing. OCR snippets are short single
// paragraphs, so character diffs are the default.
type DiffConfig struct {
	EnableSemanticCleanup bool
	EnableLineBasedDiff   bool
	// Timeout bounds one diff; zero means no limit.
	Timeout time.Duration
}

func DefaultDiffConfig() DiffConfig {
	return DiffConfig{
		EnableSemanticCleanup: true,
		Timeout:               time.Second,
	}
}

// DiffProcessor computes inline text diffs between the old and new text of a difference
type DiffProcessor struct {
	dmp    *diffmatchpatch.DiffMatchPatch
	config DiffConfig
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor(config DiffConfig) *DiffProcessor {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = config.Timeout
	return &DiffProcessor{
		dmp:    dmp,
		config: config,
	}
}

// ProcessDiff generates diff between two strings
func (dp *DiffProcessor) ProcessDiff(text1, text2 string) []diffmatchpatch.Diff {
	diffs := dp.dmp.DiffMain(text1, text2, dp.config.EnableLineBasedDiff)

	if dp.config.EnableSemanticCleanup {
		diffs = dp.dmp.DiffCleanupSemantic(diffs)
	}

	return diffs
}

// ProcessItem diffs the old and new text carried by a difference.
func (dp *DiffProcessor) ProcessItem(item *models.DifferenceItem) []diffmatchpatch.Diff {
	return dp.ProcessDiff(item.OldText, item.NewText)
}

// PrettyHTML renders diffs as inline <del>/<ins> markup.
func (dp *DiffProcessor) PrettyHTML(diffs []diffmatchpatch.Diff) string {
	return dp.dmp.DiffPrettyHtml(diffs)
}

// DiffStatistics holds counts of changed runes
type DiffStatistics struct {
	RunesAdded   int
	RunesDeleted int
	IsIdentical  bool
}

// CalculateStats computes statistics from diff results
func CalculateStats(diffs []diffmatchpatch.Diff) DiffStatistics {
	stats := DiffStatistics{IsIdentical: true}
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			stats.RunesAdded += utf8.RuneCountInString(diff.Text)
			stats.IsIdentical = false
		case diffmatchpatch.DiffDelete:
			stats.RunesDeleted += utf8.RuneCountInString(diff.Text)
			stats.IsIdentical = false
		}
	}
	return stats
}
