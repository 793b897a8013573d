package taskapi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	status *models.TaskStatus
	err    error
}

// scriptedFetcher replays steps and repeats the last one.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (f *scriptedFetcher) GetTaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	s := f.steps[i]
	if s.status != nil {
		copied := *s.status
		copied.TaskID = taskID
		return &copied, nil
	}
	return nil, s.err
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func running() step {
	return step{status: &models.TaskStatus{Status: models.TaskOCRProcessing}}
}

func fastPoller(f StatusFetcher, attempts int) *Poller {
	api := config.NewDefaultAPIConfig()
	api.PollIntervalMs = 1
	api.MaxPollAttempts = attempts
	return NewPoller(f, api, zerolog.Nop())
}

func TestPoller_Completes(t *testing.T) {
	f := &scriptedFetcher{steps: []step{
		running(),
		{err: errors.New("connection reset")},
		{status: &models.TaskStatus{Status: models.TaskCompleted}},
	}}
	p := fastPoller(f, 10)
	var seen []models.TaskState
	p.OnStatus(func(s *models.TaskStatus) { seen = append(seen, s.Status) })

	status, err := p.Poll(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, "t1", status.TaskID)
	assert.Equal(t, 3, f.Calls(), "transient errors are retried")
	assert.Equal(t, []models.TaskState{models.TaskOCRProcessing, models.TaskCompleted}, seen)
}

func TestPoller_TerminalFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  models.TaskStatus
		message string
	}{
		{"server message", models.TaskStatus{Status: models.TaskFailed, ErrorMessage: "OCR服务不可用"}, "OCR服务不可用"},
		{"failed default", models.TaskStatus{Status: models.TaskFailed}, defaultFailedMessage},
		{"timeout default", models.TaskStatus{Status: models.TaskTimeout}, defaultTimeoutMessage},
		{"lowercase cancelled", models.TaskStatus{Status: "cancelled"}, defaultCancelledMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.status
			f := &scriptedFetcher{steps: []step{running(), {status: &status}}}

			_, err := fastPoller(f, 10).Poll(context.Background(), "t1")

			var failed *TaskFailedError
			require.True(t, errors.As(err, &failed))
			assert.Equal(t, tt.message, failed.Message)
			assert.Equal(t, "t1", failed.TaskID)
			assert.False(t, errors.Is(err, ErrPollingExhausted))
		})
	}
}

func TestPoller_Exhausted(t *testing.T) {
	f := &scriptedFetcher{steps: []step{running()}}

	_, err := fastPoller(f, 4).Poll(context.Background(), "t1")

	assert.True(t, errors.Is(err, ErrPollingExhausted))
	var failed *TaskFailedError
	assert.False(t, errors.As(err, &failed))
	assert.Equal(t, 4, f.Calls())
}

func TestPoller_ContextCancelled(t *testing.T) {
	f := &scriptedFetcher{steps: []step{running()}}
	api := config.NewDefaultAPIConfig()
	api.PollIntervalMs = 60000
	p := NewPoller(f, api, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Poll(ctx, "t1")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1, f.Calls())
}

func TestPollTask_Cancel(t *testing.T) {
	f := &scriptedFetcher{steps: []step{running()}}
	api := config.NewDefaultAPIConfig()
	api.PollIntervalMs = 60000
	task := NewPoller(f, api, zerolog.Nop()).Start(context.Background(), "t1")

	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poll task did not stop after Cancel")
	}
	status, err := task.Result()
	assert.Nil(t, status)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPollTask_Result(t *testing.T) {
	f := &scriptedFetcher{steps: []step{running(), {status: &models.TaskStatus{Status: models.TaskCompleted}}}}
	task := fastPoller(f, 10).Start(context.Background(), "t1")

	status, err := task.Result()

	require.NoError(t, err)
	assert.True(t, status.Status.IsCompleted())
	task.Cancel()
	_, err = task.Result()
	assert.NoError(t, err, "cancelling a finished task keeps its result")
}
