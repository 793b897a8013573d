package taskapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
)

// ErrPollingExhausted is returned when the attempt ceiling is reached before
// the task finished. It is distinct from a server-reported TIMEOUT.
var ErrPollingExhausted = errors.New("task polling attempts exhausted")

// Messages used when the backend reports a failure without one.
const (
	defaultFailedMessage    = "比对任务失败"
	defaultTimeoutMessage   = "比对任务超时"
	defaultCancelledMessage = "比对任务已取消"
)

// TaskFailedError is a terminal FAILED, TIMEOUT or CANCELLED status.
type TaskFailedError struct {
	TaskID  string
	Status  models.TaskState
	Message string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s %s: %s", e.TaskID, e.Status, e.Message)
}

func newTaskFailedError(status *models.TaskStatus) *TaskFailedError {
	msg := status.ErrorMessage
	if msg == "" {
		switch models.TaskState(strings.ToUpper(string(status.Status))) {
		case models.TaskTimeout:
			msg = defaultTimeoutMessage
		case models.TaskCancelled:
			msg = defaultCancelledMessage
		default:
			msg = defaultFailedMessage
		}
	}
	return &TaskFailedError{TaskID: status.TaskID, Status: status.Status, Message: msg}
}

// StatusFetcher reads one task status.
type StatusFetcher interface {
	GetTaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error)
}

// StatusFunc observes every successfully fetched status.
type StatusFunc func(*models.TaskStatus)

// Poller requests a task's status at a fixed interval until it completes,
// fails, the attempt ceiling is hit or the context ends.
type Poller struct {
	fetcher     StatusFetcher
	interval    time.Duration
	maxAttempts int
	logger      zerolog.Logger
	onStatus    StatusFunc
}

// NewPoller creates a poller using the API config's cadence.
func NewPoller(fetcher StatusFetcher, api config.APIConfig, logger zerolog.Logger) *Poller {
	defaults := config.NewDefaultAPIConfig()
	interval := api.PollInterval()
	if interval <= 0 {
		interval = defaults.PollInterval()
	}
	attempts := api.MaxPollAttempts
	if attempts <= 0 {
		attempts = defaults.MaxPollAttempts
	}
	return &Poller{
		fetcher:     fetcher,
		interval:    interval,
		maxAttempts: attempts,
		logger:      logger.With().Str("component", "TaskPoller").Logger(),
	}
}

// OnStatus registers a callback for every fetched status.
func (p *Poller) OnStatus(fn StatusFunc) {
	p.onStatus = fn
}

// Poll blocks until the task completes and returns its final status.
// Transient fetch errors are logged and retried.
func (p *Poller) Poll(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	log := p.logger.With().Str("task_id", taskID).Logger()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.fetcher.GetTaskStatus(ctx, taskID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Int("attempt", attempt).Msg("Task status request failed, will retry")
		default:
			if p.onStatus != nil {
				p.onStatus(status)
			}
			if status.Status.IsCompleted() {
				log.Info().Int("attempts", attempt).Msg("Task completed")
				return status, nil
			}
			if status.Status.IsTerminalFailure() {
				failure := newTaskFailedError(status)
				log.Error().Str("status", string(status.Status)).Str("message", failure.Message).Msg("Task failed")
				return nil, failure
			}
			log.Debug().
				Int("attempt", attempt).
				Str("status", string(status.Status)).
				Str("step", status.CurrentStepDesc).
				Msg("Task still running")
		}

		if attempt == p.maxAttempts {
			break
		}
		timer := time.NewTimer(p.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	log.Warn().Int("max_attempts", p.maxAttempts).Msg("Task polling exhausted")
	return nil, fmt.Errorf("%w after %d attempts", ErrPollingExhausted, p.maxAttempts)
}

// Start runs Poll in the background and returns a handle to it.
func (p *Poller) Start(ctx context.Context, taskID string) *PollTask {
	ctx, cancel := context.WithCancel(ctx)
	task := &PollTask{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(task.done)
		defer cancel()
		status, err := p.Poll(ctx, taskID)
		task.mu.Lock()
		task.status, task.err = status, err
		task.mu.Unlock()
	}()
	return task
}

// PollTask is a running Poll that can be cancelled.
type PollTask struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	status *models.TaskStatus
	err    error
}

// Cancel stops polling. Result then reports context.Canceled unless the
// task had already finished.
func (t *PollTask) Cancel() {
	t.cancel()
}

// Done is closed once polling ends.
func (t *PollTask) Done() <-chan struct{} {
	return t.done
}

// Result waits for polling to end and returns its outcome.
func (t *PollTask) Result() (*models.TaskStatus, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.err
}
