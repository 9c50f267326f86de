// Package memory provides an in-process TaskQueue for single-binary
// deployments (RUN_MODE=all without Redis or Postgres).
package memory

import (
	"container/heap"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

type entry struct {
	task *domain.Task
	seq  uint64
}

// pending orders by priority (desc), then enqueue order.
type pending []entry

func (p pending) Len() int { return len(p) }
func (p pending) Less(i, j int) bool {
	if p[i].task.Priority != p[j].task.Priority {
		return p[i].task.Priority > p[j].task.Priority
	}
	return p[i].seq < p[j].seq
}
func (p pending) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p *pending) Push(x any)   { *p = append(*p, x.(entry)) }
func (p *pending) Pop() any {
	old := *p
	e := old[len(old)-1]
	*p = old[:len(old)-1]
	return e
}

// Queue is a priority task queue held in memory.
type Queue struct {
	mu      sync.Mutex
	tasks   map[string]*domain.Task
	pending pending
	seq     uint64
	ready   chan struct{}
	closed  bool
}

// NewQueue creates an empty in-memory queue.
func NewQueue() *Queue {
	return &Queue{
		tasks: make(map[string]*domain.Task),
		ready: make(chan struct{}, 1),
	}
}

func (q *Queue) push(task *domain.Task) {
	cp := *task
	q.tasks[task.ID] = &cp
	q.seq++
	heap.Push(&q.pending, entry{task: &cp, seq: q.seq})
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.New("queue closed")
	}
	q.push(task)
	q.mu.Unlock()

	q.signal()
	return nil
}

// DequeueWithTimeout waits up to timeout seconds; zero or less waits on ctx only.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(time.Duration(timeout) * time.Second)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		if task, wait := q.take(); task != nil {
			return task, nil
		} else if wait > 0 {
			// Only retries scheduled in the future remain.
			select {
			case <-ctx.Done():
				return nil, nil
			case <-expired:
				return nil, nil
			case <-q.ready:
			case <-time.After(wait):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil, nil
		case <-expired:
			return nil, nil
		case <-q.ready:
		}
	}
}

// take pops the best ready task. When none is ready but some are scheduled
// later it returns how long until the earliest one is due.
func (q *Queue) take() (*domain.Task, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	var deferred []entry
	var wait time.Duration
	defer func() {
		for _, e := range deferred {
			heap.Push(&q.pending, e)
		}
	}()

	for q.pending.Len() > 0 {
		e := heap.Pop(&q.pending).(entry)
		if e.task.Status != domain.TaskStatusPending {
			continue
		}
		if now.Before(e.task.ScheduledFor) {
			d := e.task.ScheduledFor.Sub(now)
			if wait == 0 || d < wait {
				wait = d
			}
			deferred = append(deferred, e)
			continue
		}

		e.task.MarkProcessing()
		cp := *e.task
		return &cp, 0
	}
	return nil, wait
}

func (q *Queue) Ack(ctx context.Context, taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	task.MarkCompleted()
	return nil
}

// Nack re-queues a task with backoff while attempts remain, else fails it.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	q.mu.Lock()
	task, ok := q.tasks[taskID]
	if !ok {
		q.mu.Unlock()
		return domain.ErrNotFound
	}
	if !task.CanRetry() {
		task.MarkFailed(reason)
		q.mu.Unlock()
		return nil
	}
	task.Retry(reason)
	q.seq++
	heap.Push(&q.pending, entry{task: task, seq: q.seq})
	q.mu.Unlock()

	q.signal()
	return nil
}

func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (q *Queue) ListTasks(ctx context.Context, filter driven.TaskFilter) ([]*domain.Task, error) {
	q.mu.Lock()
	out := make([]*domain.Task, 0, len(q.tasks))
	for _, task := range q.tasks {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Type != "" && task.Type != filter.Type {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	q.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*domain.Task{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CancelTask fails a pending task; it is skipped when popped.
func (q *Queue) CancelTask(ctx context.Context, taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	if task.Status != domain.TaskStatusPending {
		return errors.New("task not pending")
	}
	task.MarkFailed("cancelled")
	return nil
}

func (q *Queue) PurgeTasks(ctx context.Context, olderThanSeconds int) (int, error) {
	cutoff := time.Now().Add(-time.Duration(olderThanSeconds) * time.Second)

	q.mu.Lock()
	defer q.mu.Unlock()
	var purged int
	for id, task := range q.tasks {
		done := task.Status == domain.TaskStatusCompleted || task.Status == domain.TaskStatusFailed
		if done && task.UpdatedAt.Before(cutoff) {
			delete(q.tasks, id)
			purged++
		}
	}
	return purged, nil
}

func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := &driven.QueueStats{}
	var oldest time.Time
	for _, task := range q.tasks {
		switch task.Status {
		case domain.TaskStatusPending:
			stats.PendingCount++
			if oldest.IsZero() || task.CreatedAt.Before(oldest) {
				oldest = task.CreatedAt
			}
		case domain.TaskStatusProcessing:
			stats.ProcessingCount++
		case domain.TaskStatusCompleted:
			stats.CompletedCount++
		case domain.TaskStatusFailed:
			stats.FailedCount++
		}
	}
	if !oldest.IsZero() {
		stats.OldestPendingAge = int64(time.Since(oldest).Seconds())
	}
	return stats, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	return nil
}

// Close rejects further enqueues. Pending tasks are dropped with the process.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
