package dispatch

import (
	"context"
	"log/slog"
)

// Queue runs deliveries on a background worker. Notification delivery
// is best-effort: a full queue drops the task with a warning and a
// failed run is only logged.
type Queue struct {
	tasks chan task
}

type task struct {
	Kind string
	Run  func(context.Context) error
}

func New(size int) *Queue {
	return &Queue{tasks: make(chan task, size)}
}

func (q *Queue) Start(ctx context.Context) {
	go q.worker(ctx)
}

func (q *Queue) Enqueue(kind string, run func(context.Context) error) {
	select {
	case q.tasks <- task{Kind: kind, Run: run}:
	default:
		slog.Warn("dispatch queue full, dropping task", "kind", kind)
	}
}

func (q *Queue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.tasks:
			if err := t.Run(ctx); err != nil {
				slog.Warn("dispatch task failed", "kind", t.Kind, "err", err)
			}
		}
	}
}
