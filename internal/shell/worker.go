package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/roboco-io/docxinspect/internal/report"
)

// ErrWorkerBusy is returned by Submit while an analysis is queued or running.
var ErrWorkerBusy = errors.New("analysis already in progress")

// Task is one analysis request. Options is a snapshot taken when the task
// is submitted.
type Task struct {
	ID      string
	Path    string
	Reason  string // "command" or "watch"
	Options report.Options
}

// Result is the outcome of a Task.
type Result struct {
	Task     Task
	Output   string
	Duration time.Duration
}

// Handler runs one analysis and returns its report text.
type Handler func(ctx context.Context, task Task) string

// Worker runs at most one analysis at a time. Results are delivered on
// Results and must be consumed by the controlling loop, which is the only
// place output is written.
type Worker struct {
	handler Handler
	logger  *slog.Logger

	queue   chan Task
	results chan Result
	busy    atomic.Bool
}

// NewWorker creates a single-slot worker.
func NewWorker(handler Handler, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		handler: handler,
		logger:  logger.With("component", "worker"),
		queue:   make(chan Task, 1),
		results: make(chan Result, 1),
	}
}

// Start runs the worker's processing loop.
// Blocks until context is cancelled. Run in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case task := <-w.queue:
			start := time.Now()
			output := w.handler(ctx, task)
			result := Result{Task: task, Output: output, Duration: time.Since(start)}
			w.logger.Debug("analysis finished", "task_id", task.ID, "path", task.Path, "duration", result.Duration)

			select {
			case w.results <- result:
			case <-ctx.Done():
				return
			}
			w.busy.Store(false)
		}
	}
}

// Submit queues task and returns its assigned ID. It fails with
// ErrWorkerBusy while a previous task is queued, running or has a result
// that was not received yet.
func (w *Worker) Submit(task Task) (string, error) {
	if len(w.results) > 0 || !w.busy.CompareAndSwap(false, true) {
		return "", ErrWorkerBusy
	}

	task.ID = uuid.New().String()
	w.queue <- task
	w.logger.Debug("analysis queued", "task_id", task.ID, "path", task.Path, "reason", task.Reason)
	return task.ID, nil
}

// Busy reports whether a task is queued, running or waiting to be received.
func (w *Worker) Busy() bool {
	// busy is cleared only after the result is buffered.
	return w.busy.Load() || len(w.results) > 0
}

// Results returns the channel on which finished analyses are delivered.
func (w *Worker) Results() <-chan Result {
	return w.results
}
