package differ

import (
	"testing"

	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffProcessor_ProcessItem(t *testing.T) {
	dp := NewDiffProcessor(DefaultDiffConfig())
	item := &models.DifferenceItem{OldText: "甲方应于十日内付款", NewText: "甲方应于三十日内付款"}

	diffs := dp.ProcessItem(item)
	require.NotEmpty(t, diffs)

	stats := CalculateStats(diffs)
	assert.False(t, stats.IsIdentical)
	assert.Equal(t, 1, stats.RunesAdded)
	assert.Equal(t, 0, stats.RunesDeleted)

	html := dp.PrettyHTML(diffs)
	assert.Contains(t, html, "<ins")
	assert.Contains(t, html, "三")
}

func TestCalculateStats_Identical(t *testing.T) {
	dp := NewDiffProcessor(DefaultDiffConfig())
	stats := CalculateStats(dp.ProcessDiff("same", "same"))
	assert.True(t, stats.IsIdentical)

	stats = CalculateStats([]diffmatchpatch.Diff{{Type: diffmatchpatch.DiffDelete, Text: "删除"}})
	assert.Equal(t, 2, stats.RunesDeleted)
}
