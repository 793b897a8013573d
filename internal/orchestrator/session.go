package orchestrator

import (
	"bytes"
	"context"
	"io"

	"github.com/aleister1102/ocrdiff/internal/canvas"
	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/eventloop"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/aleister1102/ocrdiff/internal/viewer"
	"github.com/rs/zerolog"
)

// Session is a viewer running on its own event loop. Its methods may be
// called from any goroutine; each one hops onto the loop.
type Session struct {
	loop   *eventloop.Loop
	viewer *viewer.Viewer
	logger zerolog.Logger
	cancel context.CancelFunc
}

// OpenSession starts a loop, builds a viewer on it and loads result.
func OpenSession(ctx context.Context, cfg *config.GlobalConfig, images canvas.ImageLoader, result *models.CompareResult, logger zerolog.Logger) (*Session, error) {
	if result == nil {
		return nil, common.NewValidationError("result", nil, "comparison result is required")
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	loop := eventloop.NewLoop(eventloop.DefaultFrameInterval, logger)
	go func() { _ = loop.Run(loopCtx) }()

	s := &Session{
		loop:   loop,
		logger: logger.With().Str("component", "Session").Str("task_id", result.TaskID).Logger(),
		cancel: cancel,
	}

	var initErr error
	err := loop.Do(ctx, func() {
		s.viewer, initErr = viewer.New(loop, images, viewer.Options{
			Viewer: cfg.ViewerConfig,
			Scroll: cfg.ScrollConfig,
		}, logger)
		if initErr != nil {
			return
		}
		initErr = s.viewer.Init(viewer.ContentFromResult(result))
	})
	if err == nil {
		err = initErr
	}
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := s.settle(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// settle drains the callbacks queued so far and waits for page renders.
func (s *Session) settle(ctx context.Context) error {
	if err := s.loop.Do(ctx, func() {}); err != nil {
		return err
	}
	return s.viewer.WaitIdle(ctx)
}

// Select selects the index-th difference and waits for both panes to repaint.
func (s *Session) Select(ctx context.Context, index int) error {
	var selErr error
	if err := s.loop.Do(ctx, func() { selErr = s.viewer.SelectDifference(index) }); err != nil {
		return err
	}
	if selErr != nil {
		return selErr
	}
	return s.settle(ctx)
}

// SetFilter narrows the difference list.
func (s *Session) SetFilter(ctx context.Context, mode models.FilterMode) error {
	var filterErr error
	if err := s.loop.Do(ctx, func() { filterErr = s.viewer.SetFilter(mode) }); err != nil {
		return err
	}
	if filterErr != nil {
		return filterErr
	}
	return s.settle(ctx)
}

// Differences returns the currently listed differences.
func (s *Session) Differences(ctx context.Context) ([]models.DifferenceItem, error) {
	var diffs []models.DifferenceItem
	err := s.loop.Do(ctx, func() { diffs = s.viewer.Differences() })
	return diffs, err
}

// WriteSnapshot selects a difference and writes the composed viewport as PNG
// and, when svg is non-nil, the connector overlay.
func (s *Session) WriteSnapshot(ctx context.Context, index int, png io.Writer, svg io.Writer) error {
	if err := s.Select(ctx, index); err != nil {
		return err
	}
	var writeErr error
	err := s.loop.Do(ctx, func() {
		if writeErr = s.viewer.WriteSnapshotPNG(png); writeErr != nil {
			return
		}
		if svg != nil {
			writeErr = s.viewer.WriteConnectorSVG(svg)
		}
	})
	if err != nil {
		return err
	}
	return writeErr
}

// SnapshotPNG renders the index-th difference; it matches reporter.SnapshotFunc.
func (s *Session) SnapshotPNG(ctx context.Context, index int) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteSnapshot(ctx, index, &buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close tears the viewer down and stops the loop.
func (s *Session) Close() {
	if s.viewer != nil {
		if err := s.loop.Do(context.Background(), s.viewer.Close); err != nil {
			s.logger.Debug().Err(err).Msg("Viewer close skipped, loop already stopped")
		}
	}
	s.cancel()
	s.loop.Close()
}
