// Package orchestrator runs the end-to-end comparison workflows: wait for a
// backend task, fetch its result, render it in a viewer session, write the
// HTML report and record the run.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/ocrdiff/internal/canvas"
	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/datastore"
	"github.com/aleister1102/ocrdiff/internal/differ"
	"github.com/aleister1102/ocrdiff/internal/eventloop"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/aleister1102/ocrdiff/internal/progress"
	"github.com/aleister1102/ocrdiff/internal/reporter"
	"github.com/aleister1102/ocrdiff/internal/rslimiter"
	"github.com/aleister1102/ocrdiff/internal/taskapi"
	"github.com/rs/zerolog"
)

// TaskSource is the part of the backend API the workflows read.
type TaskSource interface {
	taskapi.StatusFetcher
	GetCompareResult(ctx context.Context, taskID string) (*models.CompareResult, error)
}

// ImageCache loads page images and can drop what it holds.
type ImageCache interface {
	canvas.ImageLoader
	ClearCache()
}

// RunOutcome summarizes one finished workflow.
type RunOutcome struct {
	TaskID     string
	Status     *models.TaskStatus
	Result     *models.CompareResult
	Counts     differ.Summary
	ReportPath string
}

// CompareOrchestrator wires the task client, viewer, reporter and run history.
type CompareOrchestrator struct {
	cfg      *config.GlobalConfig
	logger   zerolog.Logger
	tasks    TaskSource
	images   ImageCache
	reporter *reporter.HTMLReporter
	history  *datastore.HistoryDB
	guard    *rslimiter.MemoryGuard
	now      func() time.Time
}

// NewCompareOrchestrator creates an orchestrator. tasks is only needed by
// Watch and history may be nil to skip recording.
func NewCompareOrchestrator(
	cfg *config.GlobalConfig,
	tasks TaskSource,
	images ImageCache,
	rep *reporter.HTMLReporter,
	history *datastore.HistoryDB,
	logger zerolog.Logger,
) *CompareOrchestrator {
	moduleLogger := logger.With().Str("component", "Orchestrator").Logger()
	return &CompareOrchestrator{
		cfg:      cfg,
		logger:   moduleLogger,
		tasks:    tasks,
		images:   images,
		reporter: rep,
		history:  history,
		guard:    rslimiter.NewMemoryGuard(cfg.ResourceLimiterConfig, images.ClearCache, logger),
		now:      time.Now,
	}
}

// Watch polls the task until it completes, showing progress, then renders
// and records the report.
func (o *CompareOrchestrator) Watch(ctx context.Context, taskID string) (*RunOutcome, error) {
	if o.tasks == nil {
		return nil, common.NewValidationError("tasks", nil, "a task source is required to watch a task")
	}
	runID := o.recordStart(ctx, taskID)

	status, err := o.waitForCompletion(ctx, taskID)
	if err != nil {
		o.recordFailure(ctx, runID, status, err)
		return nil, err
	}

	result, err := o.tasks.GetCompareResult(ctx, taskID)
	if err != nil {
		err = common.WrapErrorf(err, "failed to fetch result of task %s", taskID)
		o.recordFailure(ctx, runID, status, err)
		return nil, err
	}

	outcome, err := o.report(ctx, result, status)
	if err != nil {
		o.recordFailure(ctx, runID, status, err)
		return nil, err
	}
	o.recordCompletion(ctx, runID, outcome)
	return outcome, nil
}

// Render writes the report for an already available result.
func (o *CompareOrchestrator) Render(ctx context.Context, result *models.CompareResult) (*RunOutcome, error) {
	if result == nil {
		return nil, common.NewValidationError("result", nil, "comparison result is required")
	}
	runID := o.recordStart(ctx, reportID(result))
	outcome, err := o.report(ctx, result, nil)
	if err != nil {
		o.recordFailure(ctx, runID, nil, err)
		return nil, err
	}
	o.recordCompletion(ctx, runID, outcome)
	return outcome, nil
}

// OpenSession opens a viewer session over result with the orchestrator's images.
func (o *CompareOrchestrator) OpenSession(ctx context.Context, result *models.CompareResult) (*Session, error) {
	return OpenSession(ctx, o.cfg, o.images, result, o.logger)
}

func (o *CompareOrchestrator) waitForCompletion(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	loop := eventloop.NewLoop(eventloop.DefaultFrameInterval, o.logger)
	go func() { _ = loop.Run(loopCtx) }()
	defer loop.Close()

	display := progress.NewDisplayManager(taskID, o.logger, progress.DisplayConfigFromConfig(o.cfg.ProgressConfig))
	estimator := progress.NewEstimator(loop, o.cfg.ProgressConfig, o.logger)
	estimator.OnTick(display.UpdateProgress)
	display.Start()
	defer display.Stop()
	loop.Post(estimator.Start)

	var last *models.TaskStatus
	poller := taskapi.NewPoller(o.tasks, o.cfg.APIConfig, o.logger)
	poller.OnStatus(func(status *models.TaskStatus) {
		last = status
		display.UpdateTask(status)
		snap := status.Snapshot()
		loop.Post(func() { estimator.Update(snap) })
	})

	status, err := poller.Poll(ctx, taskID)
	if err != nil {
		_ = loop.Do(context.Background(), estimator.Stop)
		switch {
		case errors.Is(err, context.Canceled):
			display.SetStatus(progress.ProgressStatusCancelled, "watch cancelled")
		default:
			display.SetStatus(progress.ProgressStatusError, err.Error())
		}
		return last, err
	}

	_ = loop.Do(ctx, estimator.Complete)
	display.UpdateTask(status)
	return status, nil
}

func (o *CompareOrchestrator) report(ctx context.Context, result *models.CompareResult, status *models.TaskStatus) (*RunOutcome, error) {
	o.guard.Start(ctx)
	defer o.guard.Stop()

	session, err := o.OpenSession(ctx, result)
	if err != nil {
		return nil, common.WrapError(err, "failed to open viewer session")
	}
	defer session.Close()

	path, err := o.reporter.GenerateReport(ctx, reporter.ReportInput{
		TaskID:      result.TaskID,
		Result:      result,
		Status:      status,
		Snapshot:    session.SnapshotPNG,
		GeneratedAt: o.now(),
	})
	if err != nil {
		return nil, err
	}

	outcome := &RunOutcome{
		TaskID:     reportID(result),
		Status:     status,
		Result:     result,
		Counts:     differ.Summarize(result.Differences),
		ReportPath: path,
	}
	o.logger.Info().
		Str("task_id", outcome.TaskID).
		Int("total", outcome.Counts.Total).
		Int("deletes", outcome.Counts.Deletes).
		Int("inserts", outcome.Counts.Inserts).
		Str("report", path).
		Msg("Comparison report ready")
	return outcome, nil
}

// recordStart returns 0 when history is disabled or the insert failed;
// history problems never fail a workflow.
func (o *CompareOrchestrator) recordStart(ctx context.Context, taskID string) int64 {
	if o.history == nil {
		return 0
	}
	id, err := o.history.RecordRunStart(ctx, taskID, o.now())
	if err != nil {
		o.logger.Warn().Err(err).Str("task_id", taskID).Msg("Failed to record run start")
		return 0
	}
	return id
}

func (o *CompareOrchestrator) recordCompletion(ctx context.Context, runID int64, outcome *RunOutcome) {
	state := string(models.TaskCompleted)
	if outcome.Status != nil && outcome.Status.Status != "" {
		state = string(outcome.Status.Status)
	}
	o.finishRun(ctx, runID, datastore.RunCompletion{
		Status:      state,
		OldFileName: outcome.Result.OldFileName,
		NewFileName: outcome.Result.NewFileName,
		Counts:      outcome.Counts,
		ReportPath:  outcome.ReportPath,
	})
}

func (o *CompareOrchestrator) recordFailure(ctx context.Context, runID int64, status *models.TaskStatus, cause error) {
	completion := datastore.RunCompletion{Status: string(models.TaskFailed), ErrorMessage: cause.Error()}
	var failed *taskapi.TaskFailedError
	switch {
	case errors.As(cause, &failed):
		completion.Status = string(failed.Status)
	case errors.Is(cause, context.Canceled):
		completion.Status = string(models.TaskCancelled)
	case errors.Is(cause, taskapi.ErrPollingExhausted):
		completion.Status = string(models.TaskTimeout)
	}
	if status != nil {
		completion.OldFileName = status.OldFileName
		completion.NewFileName = status.NewFileName
	}
	// the watch context may already be cancelled; the row should still close
	o.finishRun(context.WithoutCancel(ctx), runID, completion)
}

func (o *CompareOrchestrator) finishRun(ctx context.Context, runID int64, completion datastore.RunCompletion) {
	if o.history == nil || runID == 0 {
		return
	}
	completion.FinishedAt = o.now()
	if err := o.history.RecordRunCompletion(ctx, runID, completion); err != nil {
		o.logger.Warn().Err(err).Int64("run_id", runID).Msg("Failed to record run completion")
	}
}

func reportID(result *models.CompareResult) string {
	if result.TaskID == "" {
		return "comparison"
	}
	return result.TaskID
}
