package reporter

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"time"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/differ"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
)

// SnapshotFunc renders the comparison with the index-th difference selected
// and returns it as PNG.
type SnapshotFunc func(ctx context.Context, index int) ([]byte, error)

// ReportInput is everything one comparison report shows.
type ReportInput struct {
	TaskID string
	Result *models.CompareResult
	// Status is the final task status; optional.
	Status *models.TaskStatus
	// Snapshot is optional; without it rows carry no image.
	Snapshot    SnapshotFunc
	GeneratedAt time.Time
}

// DiffRow is one difference in the report table.
type DiffRow struct {
	Index       int
	Operation   models.Operation
	OldPage     int
	NewPage     int
	OldText     string
	NewText     string
	DiffHTML    template.HTML
	Summary     string
	SnapshotSrc template.URL
}

// ComparePageData is the template model of a comparison report.
type ComparePageData struct {
	ReportTitle string
	TaskID      string
	OldFileName string
	NewFileName string
	OldPages    int
	NewPages    int
	Counts      differ.Summary
	Rows        []DiffRow
	Duration    string
	GeneratedAt time.Time
	CustomCSS   template.CSS
	ReportJs    template.JS
}

func (p *ComparePageData) SetCustomCSS(css template.CSS) { p.CustomCSS = css }
func (p *ComparePageData) SetReportJs(js template.JS)    { p.ReportJs = js }

// snapshotSink decides where a rendered snapshot goes and returns its src.
type snapshotSink func(index int, png []byte) (template.URL, error)

// HTMLReporter writes self-contained HTML comparison reports.
type HTMLReporter struct {
	cfg          config.ReporterConfig
	logger       zerolog.Logger
	template     *template.Template
	assetManager *AssetManager
	directoryMgr *DirectoryManager
	diffUtils    *DiffUtils
}

// NewHTMLReporter parses the embedded template and prepares the output directory.
func NewHTMLReporter(cfg config.ReporterConfig, logger zerolog.Logger) (*HTMLReporter, error) {
	moduleLogger := logger.With().Str("component", "HTMLReporter").Logger()
	if cfg.OutputDir == "" {
		cfg.OutputDir = config.DefaultReporterOutputDir
		moduleLogger.Info().Str("default_dir", cfg.OutputDir).Msg("OutputDir not specified, using default.")
	}
	if cfg.ReportTitle == "" {
		cfg.ReportTitle = DefaultReportTitle
	}

	r := &HTMLReporter{
		cfg:          cfg,
		logger:       moduleLogger,
		assetManager: NewAssetManager(moduleLogger),
		directoryMgr: NewDirectoryManager(moduleLogger),
		diffUtils:    NewDiffUtils(cfg.MaxTextLength),
	}

	tmpl, err := template.New(DefaultReportTemplateName).Funcs(GetTemplateFunctions()).
		ParseFS(templatesFS, "templates/"+DefaultReportTemplateName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	r.template = tmpl

	if err := r.directoryMgr.EnsureOutputDirectories(cfg.OutputDir); err != nil {
		return nil, err
	}
	return r, nil
}

// Render writes the report to w with snapshots inlined as data URIs.
func (r *HTMLReporter) Render(ctx context.Context, w io.Writer, in ReportInput) error {
	pageData, err := r.buildPageData(ctx, in, inlineSnapshot)
	if err != nil {
		return err
	}
	if err := r.template.ExecuteTemplate(w, DefaultReportTemplateName, pageData); err != nil {
		return fmt.Errorf("failed to execute report template: %w", err)
	}
	return nil
}

// GenerateReport writes <output_dir>/<task_id>.html and returns its path.
// Snapshots are inlined or written beside the report depending on the config.
func (r *HTMLReporter) GenerateReport(ctx context.Context, in ReportInput) (string, error) {
	if in.Result == nil {
		return "", common.NewValidationError("result", nil, "comparison result is required")
	}
	taskID := reportTaskID(in)
	outputPath := r.directoryMgr.ReportPath(r.cfg.OutputDir, taskID)

	sink := inlineSnapshot
	if !r.cfg.EmbedSnapshots {
		dir, err := r.directoryMgr.EnsureSnapshotDir(r.cfg.OutputDir, taskID)
		if err != nil {
			return "", err
		}
		sink = r.fileSnapshot(dir)
	}

	pageData, err := r.buildPageData(ctx, in, sink)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.template.ExecuteTemplate(&buf, DefaultReportTemplateName, pageData); err != nil {
		r.logger.Error().Err(err).Msg("Failed to execute template for comparison report")
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	if err := r.directoryMgr.WriteFile(outputPath, buf.Bytes()); err != nil {
		return "", err
	}

	r.logger.Info().
		Str("path", outputPath).
		Int("differences", len(pageData.Rows)).
		Msg("Successfully generated comparison report")
	return outputPath, nil
}

func (r *HTMLReporter) buildPageData(ctx context.Context, in ReportInput, sink snapshotSink) (*ComparePageData, error) {
	result := in.Result
	if result == nil {
		return nil, common.NewValidationError("result", nil, "comparison result is required")
	}
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	counts := differ.Summarize(result.Differences)
	if result.TotalDiffCount > 0 && result.TotalDiffCount != counts.Total {
		r.logger.Warn().
			Int("reported", result.TotalDiffCount).
			Int("counted", counts.Total).
			Msg("Backend difference count disagrees with the difference list")
	}

	pageData := &ComparePageData{
		ReportTitle: r.cfg.ReportTitle,
		TaskID:      reportTaskID(in),
		OldFileName: result.OldFileName,
		NewFileName: result.NewFileName,
		OldPages:    result.OldImageInfo.PageCount(),
		NewPages:    result.NewImageInfo.PageCount(),
		Counts:      counts,
		GeneratedAt: generatedAt,
	}
	if in.Status != nil {
		if start := models.ParseStartTime(in.Status.StartTime); !start.IsZero() && generatedAt.After(start) {
			pageData.Duration = generatedAt.Sub(start).Round(time.Second).String()
		}
	}
	r.assetManager.EmbedAssetsIntoPageData(pageData)

	for i := range result.Differences {
		item := &result.Differences[i]
		diffHTML, stats := r.diffUtils.GenerateDiffHTML(item)
		row := DiffRow{
			Index:     i,
			Operation: item.Operation,
			OldText:   item.OldText,
			NewText:   item.NewText,
			DiffHTML:  diffHTML,
			Summary:   r.diffUtils.CreateDiffSummary(stats),
		}
		if item.Operation == models.OperationDelete || item.PageA > 0 || item.Page > 0 {
			row.OldPage = item.OldPage()
		}
		if item.Operation == models.OperationInsert || item.PageB > 0 || item.Page > 0 {
			row.NewPage = item.NewPage()
		}

		if in.Snapshot != nil && i < r.snapshotLimit() {
			src, err := r.snapshot(ctx, in.Snapshot, sink, i)
			if err != nil {
				return nil, err
			}
			row.SnapshotSrc = src
		}
		pageData.Rows = append(pageData.Rows, row)
	}
	return pageData, nil
}

func (r *HTMLReporter) snapshotLimit() int {
	if r.cfg.MaxSnapshots <= 0 {
		return 0
	}
	return r.cfg.MaxSnapshots
}

// snapshot renders one difference. Render failures are logged and leave the
// row without an image; only cancellation aborts the report.
func (r *HTMLReporter) snapshot(ctx context.Context, fn SnapshotFunc, sink snapshotSink, index int) (template.URL, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fn(ctx, index)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn().Err(err).Int("difference", index).Msg("Failed to render difference snapshot")
		return "", nil
	}
	src, err := sink(index, data)
	if err != nil {
		r.logger.Warn().Err(err).Int("difference", index).Msg("Failed to store difference snapshot")
		return "", nil
	}
	return src, nil
}

func inlineSnapshot(_ int, data []byte) (template.URL, error) {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)), nil
}

func (r *HTMLReporter) fileSnapshot(dir string) snapshotSink {
	return func(index int, data []byte) (template.URL, error) {
		name := fmt.Sprintf(snapshotFileName, index+1)
		if err := r.directoryMgr.WriteFile(filepath.Join(dir, name), data); err != nil {
			return "", err
		}
		return template.URL(filepath.ToSlash(filepath.Join(filepath.Base(dir), name))), nil
	}
}

func reportTaskID(in ReportInput) string {
	id := in.TaskID
	if id == "" && in.Result != nil {
		id = in.Result.TaskID
	}
	if id == "" {
		return "comparison"
	}
	return filepath.Base(filepath.Clean("/" + id))
}
