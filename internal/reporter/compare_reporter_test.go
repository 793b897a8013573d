package reporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake")

func sampleResult() *models.CompareResult {
	page := models.PageImageInfo{Width: 800, Height: 1000}
	return &models.CompareResult{
		TaskID:       "task-42",
		OldFileName:  "合同v1.pdf",
		NewFileName:  "合同v2.pdf",
		OldImageInfo: models.DocumentImageInfo{TotalPages: 2, Pages: []models.PageImageInfo{page, page}},
		NewImageInfo: models.DocumentImageInfo{TotalPages: 3, Pages: []models.PageImageInfo{page, page, page}},
		Differences: []models.DifferenceItem{
			{Operation: models.OperationDelete, PageA: 2, OldBbox: []float64{1, 2, 3, 4}, OldText: "甲方应于十日内付款<b>"},
			{Operation: models.OperationInsert, PageB: 3, NewBbox: []float64{1, 2, 3, 4}, NewText: "乙方承担运费"},
			{Operation: models.OperationInsert, PageB: 1, NewBbox: []float64{1, 2, 3, 4}, OldText: "三十日", NewText: "十五日"},
		},
	}
}

func newTestReporter(t *testing.T, embed bool) *HTMLReporter {
	t.Helper()
	cfg := config.NewDefaultReporterConfig()
	cfg.OutputDir = t.TempDir()
	cfg.EmbedSnapshots = embed
	cfg.MaxSnapshots = 2
	r, err := NewHTMLReporter(cfg, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *HTMLReporter, in ReportInput) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, in))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestRender_HeaderAndCounts(t *testing.T) {
	r := newTestReporter(t, true)
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)

	doc := render(t, r, ReportInput{
		Result:      sampleResult(),
		Status:      &models.TaskStatus{Status: models.TaskCompleted, StartTime: "2024-05-01T09:00:00"},
		GeneratedAt: start.Add(95 * time.Second),
	})

	assert.Equal(t, "task-42", doc.Find("#task-id").Text())
	assert.Contains(t, doc.Find("#old-file").Text(), "合同v1.pdf")
	assert.Contains(t, doc.Find("#new-file").Text(), "(3 pages)")
	assert.Equal(t, "1m35s", doc.Find("#duration").Text())
	assert.Equal(t, "3", doc.Find("#count-total").Text())
	assert.Equal(t, "1", doc.Find("#count-delete").Text())
	assert.Equal(t, "2", doc.Find("#count-insert").Text())
	assert.Contains(t, doc.Find("style").Text(), ".difference.hidden")
	assert.Contains(t, doc.Find("script").Text(), "data-operation")
}

func TestRender_Rows(t *testing.T) {
	r := newTestReporter(t, true)

	doc := render(t, r, ReportInput{Result: sampleResult()})

	rows := doc.Find("li.difference")
	require.Equal(t, 3, rows.Length())

	first := rows.Eq(0)
	assert.Equal(t, "DELETE", first.AttrOr("data-operation", ""))
	assert.Equal(t, "删除", first.Find(".operation").Text())
	assert.Equal(t, "P2", first.Find(".old-page").Text())
	assert.Equal(t, "-", first.Find(".new-page").Text())
	assert.Equal(t, "甲方应于十日内付款<b>", first.Find(".old-text").Contents().Last().Text(), "text is escaped, not parsed")
	assert.Equal(t, 0, first.Find(".old-text b").Length())

	third := rows.Eq(2)
	assert.Equal(t, "diff-3", third.AttrOr("id", ""))
	assert.Contains(t, third.Find(".text-diff ins").Text(), "五")
	assert.Contains(t, third.Find(".text-diff del").Text(), "三")
	assert.Contains(t, third.Find(".diff-summary").Text(), "added")

	assert.Equal(t, 0, doc.Find("img.snapshot").Length(), "no snapshot source")
}

func TestRender_InlineSnapshotsRespectLimit(t *testing.T) {
	r := newTestReporter(t, true)
	var calls []int

	doc := render(t, r, ReportInput{
		Result: sampleResult(),
		Snapshot: func(ctx context.Context, index int) ([]byte, error) {
			calls = append(calls, index)
			if index == 1 {
				return nil, errors.New("render failed")
			}
			return fakePNG, nil
		},
	})

	assert.Equal(t, []int{0, 1}, calls)
	imgs := doc.Find("img.snapshot")
	require.Equal(t, 1, imgs.Length(), "failed snapshot leaves the row without an image")
	assert.True(t, strings.HasPrefix(imgs.AttrOr("src", ""), "data:image/png;base64,"))
}

func TestRender_NoDifferences(t *testing.T) {
	r := newTestReporter(t, true)
	result := sampleResult()
	result.Differences = nil

	doc := render(t, r, ReportInput{Result: result})

	assert.Equal(t, 1, doc.Find("#no-differences").Length())
	assert.Equal(t, "0", doc.Find("#count-total").Text())
}

func TestGenerateReport_WritesSnapshotFiles(t *testing.T) {
	r := newTestReporter(t, false)

	path, err := r.GenerateReport(context.Background(), ReportInput{
		Result:   sampleResult(),
		Snapshot: func(ctx context.Context, index int) ([]byte, error) { return fakePNG, nil },
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(r.cfg.OutputDir, "task-42.html"), path)
	data, err := os.ReadFile(filepath.Join(r.cfg.OutputDir, "task-42_snapshots", "diff-002.png"))
	require.NoError(t, err)
	assert.Equal(t, fakePNG, data)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	assert.Equal(t, "task-42_snapshots/diff-001.png", doc.Find("img.snapshot").First().AttrOr("src", ""))
}

func TestGenerateReport_Errors(t *testing.T) {
	r := newTestReporter(t, true)

	_, err := r.GenerateReport(context.Background(), ReportInput{})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.GenerateReport(ctx, ReportInput{
		Result:   sampleResult(),
		Snapshot: func(ctx context.Context, index int) ([]byte, error) { return fakePNG, nil },
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReportTaskID_IsAFileName(t *testing.T) {
	assert.Equal(t, "evil", reportTaskID(ReportInput{TaskID: "../../evil"}))
	assert.Equal(t, "task-42", reportTaskID(ReportInput{Result: sampleResult()}))
	assert.Equal(t, "comparison", reportTaskID(ReportInput{}))
}
