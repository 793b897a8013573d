// Package viewer assembles the dual-pane comparison viewer: two headless
// document panes with pooled page canvases, the difference gutter between
// them, connector lines for the selected difference and synchronized
// scrolling. A Viewer is confined to its scheduler's loop; every exported
// method must run there.
package viewer

import (
	"context"

	"github.com/aleister1102/ocrdiff/internal/canvas"
	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/connector"
	"github.com/aleister1102/ocrdiff/internal/differ"
	"github.com/aleister1102/ocrdiff/internal/eventloop"
	"github.com/aleister1102/ocrdiff/internal/gutter"
	"github.com/aleister1102/ocrdiff/internal/layout"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/aleister1102/ocrdiff/internal/syncscroll"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
)

// Document is one side of a comparison.
type Document struct {
	Info     *models.DocumentImageInfo
	BaseURL  string
	FileName string
}

// Content is everything the viewer displays.
type Content struct {
	TaskID      string
	Old         Document
	New         Document
	Differences []models.DifferenceItem
}

// ContentFromResult adapts a backend comparison result.
func ContentFromResult(r *models.CompareResult) Content {
	return Content{
		TaskID:      r.TaskID,
		Old:         Document{Info: &r.OldImageInfo, BaseURL: r.OldImageBaseURL, FileName: r.OldFileName},
		New:         Document{Info: &r.NewImageInfo, BaseURL: r.NewImageBaseURL, FileName: r.NewFileName},
		Differences: r.Differences,
	}
}

// SelectionFunc observes selection changes. diff is nil when cleared.
type SelectionFunc func(index int, diff *models.DifferenceItem)

// Options configures a Viewer.
type Options struct {
	Viewer config.ViewerConfig
	Scroll config.ScrollConfig
	// Render overrides the renderer options derived from Viewer.
	Render *canvas.RenderOptions
	// Classifier replaces the timing-based scroll classification.
	Classifier syncscroll.Classifier
	OnSelect   SelectionFunc
}

// Viewer is the dual-pane comparison viewer.
type Viewer struct {
	sched    eventloop.Scheduler
	cfg      config.ViewerConfig
	engine   *layout.Engine
	images   canvas.ImageLoader
	renderer *canvas.Renderer
	logger   zerolog.Logger

	labelFace font.Face
	onSelect SelectionFunc

	panes  map[models.PaneSide]*Pane
	gutter *gutter.Gutter
	sync   *syncscroll.Manager

	content  Content
	filter   models.FilterMode
	filtered []models.DifferenceItem
	selected int
	lines    []connector.Segment

	jumping   bool
	jumpTimer eventloop.Timer

	ctx     context.Context
	cancel  context.CancelFunc
	renders *renderTracker
	closed  bool
}

// New creates an empty viewer. Page images are read through images.
func New(sched eventloop.Scheduler, images canvas.ImageLoader, opts Options, logger zerolog.Logger) (*Viewer, error) {
	cfg := opts.Viewer
	if cfg.PaneWidth <= 0 || cfg.PaneHeight <= 0 {
		cfg = config.NewDefaultViewerConfig()
	}

	var renderOpts canvas.RenderOptions
	if opts.Render != nil {
		renderOpts = *opts.Render
	} else {
		var err error
		renderOpts, err = canvas.OptionsFromConfig(cfg)
		if err != nil {
			return nil, common.WrapError(err, "failed to prepare page renderer")
		}
	}

	logger = logger.With().Str("component", "Viewer").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	v := &Viewer{
		sched:    sched,
		cfg:      cfg,
		engine:   layout.NewEngine(layout.OptionsFromConfig(cfg)),
		images:   images,
		renderer: canvas.NewRenderer(images, renderOpts, logger),
		logger:   logger,

		labelFace: renderOpts.LabelFace,
		onSelect: opts.OnSelect,
		filter:   models.FilterAll,
		selected: -1,
		ctx:      ctx,
		cancel:   cancel,
		renders:  newRenderTracker(),
	}

	poolSize := cfg.MaxVisibleCanvases
	width, height := float64(cfg.PaneWidth), float64(cfg.PaneHeight)
	v.panes = map[models.PaneSide]*Pane{
		models.PaneLeft:  newPane(models.PaneLeft, sched, poolSize, width, height, v.onPaneScroll),
		models.PaneRight: newPane(models.PaneRight, sched, poolSize, width, height, v.onPaneScroll),
	}
	v.gutter = gutter.New(v.engine, gutter.Options{
		Width:        cfg.GutterWidth,
		Height:       int(cfg.HeaderHeight) + cfg.PaneHeight,
		HeaderHeight: cfg.HeaderHeight,
	}, v.handleGutterSelect, logger)
	v.sync = syncscroll.New(sched, v.panes[models.PaneLeft], v.panes[models.PaneRight], syncscroll.Options{
		Config:     opts.Scroll,
		Classifier: opts.Classifier,
		IsJumping:  func() bool { return v.jumping },
	}, logger)

	return v, nil
}

// Init loads a comparison, scrolls both panes to the top and renders.
func (v *Viewer) Init(content Content) error {
	if v.closed {
		return common.ErrClosed
	}
	var problems common.ErrorCollector
	problems.AddWithContext(validateDocument(content.Old), "old document")
	problems.AddWithContext(validateDocument(content.New), "new document")
	if problems.HasErrors() {
		return problems.Error()
	}

	v.content = content
	v.selected = -1
	v.lines = nil
	v.filter = models.FilterAll
	v.panes[models.PaneLeft].doc = content.Old
	v.panes[models.PaneRight].doc = content.New
	v.applyFilter()

	for _, p := range v.panes {
		p.scrollTop = 0
		p.relayout(v.engine)
	}
	v.sync.SyncInitialPositions()
	v.refresh()

	summary := differ.Summarize(content.Differences)
	v.logger.Info().
		Str("task_id", content.TaskID).
		Int("old_pages", content.Old.Info.PageCount()).
		Int("new_pages", content.New.Info.PageCount()).
		Int("deletes", summary.Deletes).
		Int("inserts", summary.Inserts).
		Msg("Viewer initialized")
	return nil
}

// Resize changes the size of both panes, keeping each pane's relative scroll
// position, and re-captures the scroll baseline.
func (v *Viewer) Resize(paneWidth, paneHeight int) error {
	if v.closed {
		return common.ErrClosed
	}
	if paneWidth < 1 || paneHeight < 1 {
		return common.NewValidationError("size", []int{paneWidth, paneHeight}, "pane size must be positive")
	}
	v.cfg.PaneWidth, v.cfg.PaneHeight = paneWidth, paneHeight
	for _, p := range v.panes {
		fraction := 0.0
		if p.scrollHeight > 0 {
			fraction = p.scrollTop / p.scrollHeight
		}
		p.width, p.clientHeight = float64(paneWidth), float64(paneHeight)
		p.relayout(v.engine)
		p.scrollTop = 0
		if p.doc.Info != nil {
			p.scrollTop = fraction * p.scrollHeight
			if max := p.MaxScrollTop(); p.scrollTop > max {
				p.scrollTop = max
			}
		}
	}
	v.gutter.Resize(v.cfg.GutterWidth, int(v.cfg.HeaderHeight)+paneHeight)
	v.sync.SyncInitialPositions()
	v.refresh()
	return nil
}

// JumpToPage scrolls one pane so the 1-based page is at the top. The other
// pane follows through scroll synchronization.
func (v *Viewer) JumpToPage(side models.PaneSide, page int) error {
	if v.closed {
		return common.ErrClosed
	}
	p, ok := v.panes[side]
	if !ok {
		return common.NewValidationError("side", side, "unknown pane")
	}
	top, ok := layout.ScrollTopForPage(p.layout, page)
	if !ok {
		return common.NewValidationError("page", page, "page outside document")
	}
	p.SetScrollTop(top)
	return nil
}

// SelectDifference selects the index-th difference of the filtered list and
// scrolls both panes to it.
func (v *Viewer) SelectDifference(index int) error {
	if v.closed {
		return common.ErrClosed
	}
	if index < 0 || index >= len(v.filtered) {
		return common.NewValidationError("index", index, "difference index out of range")
	}
	v.selected = index
	diff := &v.filtered[index]
	v.jumpTo(diff)
	v.renderGutter()
	if v.onSelect != nil {
		v.onSelect(index, diff)
	}
	return nil
}

// ClearSelection removes the selection and its connector lines.
func (v *Viewer) ClearSelection() {
	if v.selected < 0 {
		return
	}
	v.selected = -1
	v.lines = nil
	if v.onSelect != nil {
		v.onSelect(-1, nil)
	}
}

// SetFilter restricts the listed and painted differences. The selection is
// cleared because indices refer to the filtered list.
func (v *Viewer) SetFilter(mode models.FilterMode) error {
	if v.closed {
		return common.ErrClosed
	}
	switch mode {
	case models.FilterAll, models.FilterDelete, models.FilterInsert:
	default:
		return common.NewValidationError("filter", mode, "unknown filter mode")
	}
	if mode == v.filter {
		return nil
	}
	v.filter = mode
	v.ClearSelection()
	v.applyFilter()
	for _, p := range v.panes {
		p.pool.Reset()
	}
	v.refresh()
	return nil
}

// Selected returns the selected difference, if any.
func (v *Viewer) Selected() (int, *models.DifferenceItem, bool) {
	if v.selected < 0 || v.selected >= len(v.filtered) {
		return -1, nil, false
	}
	return v.selected, &v.filtered[v.selected], true
}

// Differences returns the filtered difference list.
func (v *Viewer) Differences() []models.DifferenceItem {
	return v.filtered
}

// Filter returns the active filter.
func (v *Viewer) Filter() models.FilterMode {
	return v.filter
}

// Pane returns one of the two panes.
func (v *Viewer) Pane(side models.PaneSide) *Pane {
	return v.panes[side]
}

// Gutter returns the difference gutter.
func (v *Viewer) Gutter() *gutter.Gutter {
	return v.gutter
}

// Sync returns the scroll synchronizer.
func (v *Viewer) Sync() *syncscroll.Manager {
	return v.sync
}

// Jumping reports whether a selection jump is settling.
func (v *Viewer) Jumping() bool {
	return v.jumping
}

// WaitIdle blocks until every page render started so far has finished.
// Renders started after the call are not waited for.
func (v *Viewer) WaitIdle(ctx context.Context) error {
	select {
	case <-v.renders.idleCh():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops all timers, cancels pending image loads and drops cached images.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.sync.Destroy()
	if v.jumpTimer != nil {
		v.jumpTimer.Stop()
		v.jumpTimer = nil
	}
	v.cancel()
	for _, p := range v.panes {
		p.pool.Reset()
		p.emit = nil
	}
	if c, ok := v.images.(interface{ ClearCache() }); ok {
		c.ClearCache()
	}
	v.logger.Debug().Msg("Viewer closed")
}

func validateDocument(doc Document) error {
	if doc.Info == nil {
		return common.NewValidationError("info", nil, "document image info is required")
	}
	for i, page := range doc.Info.Pages {
		if page.Width < 0 || page.Height < 0 {
			return common.NewValidationError("pages", i+1, "page size cannot be negative")
		}
	}
	return nil
}

func (v *Viewer) applyFilter() {
	v.filtered = differ.FilterDifferences(v.content.Differences, v.filter)
	groups := differ.PreprocessDifferences(v.filtered)
	v.panes[models.PaneLeft].diffs = differ.ForSide(groups, models.SideOld)
	v.panes[models.PaneRight].diffs = differ.ForSide(groups, models.SideNew)
}

func (v *Viewer) handleGutterSelect(index int, _ models.Operation) {
	if err := v.SelectDifference(index); err != nil {
		v.logger.Warn().Err(err).Int("index", index).Msg("Ignoring gutter selection")
	}
}
