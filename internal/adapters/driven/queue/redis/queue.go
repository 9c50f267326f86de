package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

const (
	// Streams, one per priority band
	highStream   = "rag:tasks:high"
	normalStream = "rag:tasks"
	taskGroup    = "rag:workers"

	scheduledTasks = "rag:scheduled"
	taskIndex      = "rag:tasks:index"
	taskKeyPrefix  = "rag:task:"

	consumerPrefix = "worker-"

	// How long a delivered message may sit unacked before another worker claims it
	claimTimeout = 5 * time.Minute

	taskTTL      = 24 * time.Hour
	pollInterval = 200 * time.Millisecond
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams with a consumer group.
// Tasks with a positive priority go to a separate stream that is always
// drained first. Task state lives in a JSON key per task.
type Queue struct {
	client       *redis.Client
	consumerName string
}

// NewQueue creates a new Redis-backed task queue.
// The consumerName should be unique per worker instance.
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = consumerPrefix + strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
	}

	ctx := context.Background()
	for _, stream := range []string{highStream, normalStream} {
		err := q.client.XGroupCreateMkStream(ctx, stream, taskGroup, "0").Err()
		if err != nil && !isGroupExistsError(err) {
			return nil, fmt.Errorf("failed to create consumer group on %s: %w", stream, err)
		}
	}

	return q, nil
}

func streamFor(task *domain.Task) string {
	if task.Priority > 0 {
		return highStream
	}
	return normalStream
}

func taskKey(id string) string { return taskKeyPrefix + id }
func msgKey(id string) string  { return taskKeyPrefix + id + ":msg" }

func (q *Queue) queueTask(ctx context.Context, pipe redis.Pipeliner, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.ID, err)
	}

	pipe.Set(ctx, taskKey(task.ID), data, taskTTL)
	pipe.SAdd(ctx, taskIndex, task.ID)

	if task.ScheduledFor.After(time.Now()) {
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
		return nil
	}

	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: streamFor(task),
		Values: map[string]any{
			"task_id": task.ID,
			"type":    string(task.Type),
		},
	})
	return nil
}

// Enqueue adds a task to the queue for processing.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	pipe := q.client.TxPipeline()
	if err := q.queueTask(ctx, pipe, task); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// DequeueWithTimeout waits up to timeout seconds for a task.
// A timeout of zero or less waits until ctx is done.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(time.Duration(timeout) * time.Second)
	}

	for {
		task, err := q.next(ctx)
		if err != nil || task != nil {
			return task, err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(pollInterval):
		}
	}
}

// next makes one non-blocking pass: due retries, abandoned work, then
// the high priority stream before the normal one.
func (q *Queue) next(ctx context.Context) (*domain.Task, error) {
	// Best effort; a failed promotion is retried on the next pass.
	_ = q.promoteScheduledTasks(ctx)

	for _, stream := range []string{highStream, normalStream} {
		task, err := q.claimAbandonedTask(ctx, stream)
		if err == nil && task != nil {
			return task, nil
		}
	}

	for _, stream := range []string{highStream, normalStream} {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    taskGroup,
			Consumer: q.consumerName,
			Streams:  []string{stream, ">"},
			Count:    1,
			Block:    -1,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read from stream: %w", err)
		}
		if len(streams) == 0 || len(streams[0].Messages) == 0 {
			continue
		}

		task, err := q.deliver(ctx, stream, streams[0].Messages[0])
		if err != nil || task != nil {
			return task, err
		}
	}

	return nil, nil
}

// deliver turns a stream message into a processing task. Messages whose
// task is gone or no longer pending are acked and dropped.
func (q *Queue) deliver(ctx context.Context, stream string, msg redis.XMessage) (*domain.Task, error) {
	drop := func() {
		q.client.XAck(ctx, stream, taskGroup, msg.ID)
		q.client.XDel(ctx, stream, msg.ID)
	}

	taskID, ok := msg.Values["task_id"].(string)
	if !ok {
		drop()
		return nil, nil
	}

	task, err := q.GetTask(ctx, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		drop()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task data: %w", err)
	}
	if task.Status != domain.TaskStatusPending {
		drop()
		return nil, nil
	}

	task.MarkProcessing()
	if err := q.save(ctx, task, stream+" "+msg.ID); err != nil {
		return nil, err
	}
	return task, nil
}

func (q *Queue) save(ctx context.Context, task *domain.Task, msgRef string) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, taskKey(task.ID), data, taskTTL)
	if msgRef != "" {
		pipe.Set(ctx, msgKey(task.ID), msgRef, taskTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

// settle acks the stream message behind a task and stores its final state.
func (q *Queue) settle(ctx context.Context, task *domain.Task, reschedule bool) error {
	msgRef, err := q.client.Get(ctx, msgKey(task.ID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get message ID: %w", err)
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.TxPipeline()
	if stream, id, ok := strings.Cut(msgRef, " "); ok {
		pipe.XAck(ctx, stream, taskGroup, id)
		pipe.XDel(ctx, stream, id)
	}
	pipe.Set(ctx, taskKey(task.ID), data, taskTTL)
	pipe.Del(ctx, msgKey(task.ID))
	if reschedule {
		pipe.ZAdd(ctx, scheduledTasks, redis.Z{
			Score:  float64(task.ScheduledFor.Unix()),
			Member: task.ID,
		})
	}

	_, err = pipe.Exec(ctx)
	return err
}

// Ack acknowledges successful completion of a task.
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	task.MarkCompleted()
	if err := q.settle(ctx, task, false); err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return nil
}

// Nack records a failed attempt. Tasks with attempts left are rescheduled
// with backoff; the rest are marked failed.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	retry := task.CanRetry()
	if retry {
		task.Retry(reason)
	} else {
		task.MarkFailed(reason)
	}

	if err := q.settle(ctx, task, retry); err != nil {
		return fmt.Errorf("failed to nack task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKey(taskID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// allTasks loads every indexed task, pruning index entries whose key expired.
func (q *Queue) allTasks(ctx context.Context) ([]*domain.Task, error) {
	ids, err := q.client.SMembers(ctx, taskIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read task index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = taskKey(id)
	}
	values, err := q.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	var tasks []*domain.Task
	var expired []any
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var task domain.Task
		if err := json.Unmarshal([]byte(s), &task); err != nil {
			continue
		}
		tasks = append(tasks, &task)
	}
	if len(expired) > 0 {
		q.client.SRem(ctx, taskIndex, expired...)
	}
	return tasks, nil
}

// ListTasks retrieves tasks matching the filter, newest first.
func (q *Queue) ListTasks(ctx context.Context, filter driven.TaskFilter) ([]*domain.Task, error) {
	all, err := q.allTasks(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(all))
	for _, task := range all {
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Type != "" && task.Type != filter.Type {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return []*domain.Task{}, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// CancelTask marks a pending task as cancelled. Its stream message, if any,
// is dropped when a worker reads it.
func (q *Queue) CancelTask(ctx context.Context, taskID string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	switch task.Status {
	case domain.TaskStatusProcessing:
		return errors.New("cannot cancel task that is processing")
	case domain.TaskStatusCompleted, domain.TaskStatusFailed:
		return errors.New("cannot cancel completed or failed task")
	}

	task.MarkFailed("cancelled")
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, scheduledTasks, taskID)
	pipe.Set(ctx, taskKey(taskID), data, taskTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// PurgeTasks removes completed and failed tasks older than the given age.
func (q *Queue) PurgeTasks(ctx context.Context, olderThanSeconds int) (int, error) {
	cutoff := time.Now().Add(-time.Duration(olderThanSeconds) * time.Second)

	tasks, err := q.allTasks(ctx)
	if err != nil {
		return 0, err
	}

	var purged int
	for _, task := range tasks {
		if task.Status != domain.TaskStatusCompleted && task.Status != domain.TaskStatusFailed {
			continue
		}
		if !task.UpdatedAt.Before(cutoff) {
			continue
		}

		pipe := q.client.Pipeline()
		pipe.Del(ctx, taskKey(task.ID), msgKey(task.ID))
		pipe.SRem(ctx, taskIndex, task.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			return purged, fmt.Errorf("failed to purge task %s: %w", task.ID, err)
		}
		purged++
	}
	return purged, nil
}

// Stats returns queue statistics derived from stored task state.
func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	tasks, err := q.allTasks(ctx)
	if err != nil {
		return nil, err
	}

	stats := &driven.QueueStats{}
	var oldest time.Time
	for _, task := range tasks {
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

// Ping checks if the queue backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close is a no-op; the Redis client is shared.
func (q *Queue) Close() error {
	return nil
}

// promoteScheduledTasks moves due retries onto their stream.
func (q *Queue) promoteScheduledTasks(ctx context.Context) error {
	ids, err := q.client.ZRangeByScore(ctx, scheduledTasks, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	pipe := q.client.Pipeline()
	for _, id := range ids {
		pipe.ZRem(ctx, scheduledTasks, id)

		task, err := q.GetTask(ctx, id)
		if err != nil || task.Status != domain.TaskStatusPending {
			continue
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: streamFor(task),
			Values: map[string]any{
				"task_id": task.ID,
				"type":    string(task.Type),
			},
		})
	}

	_, err = pipe.Exec(ctx)
	return err
}

// claimAbandonedTask takes over a message another worker left unacked for
// longer than claimTimeout. Tasks without attempts left are failed.
func (q *Queue) claimAbandonedTask(ctx context.Context, stream string) (*domain.Task, error) {
	msgs, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    taskGroup,
		Consumer: q.consumerName,
		MinIdle:  claimTimeout,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil {
		return nil, err
	}

	for _, msg := range msgs {
		taskID, _ := msg.Values["task_id"].(string)
		task, err := q.GetTask(ctx, taskID)
		if err != nil || task.Status != domain.TaskStatusProcessing {
			q.client.XAck(ctx, stream, taskGroup, msg.ID)
			q.client.XDel(ctx, stream, msg.ID)
			continue
		}

		if !task.CanRetry() {
			task.MarkFailed("abandoned by worker")
			q.client.Set(ctx, msgKey(task.ID), stream+" "+msg.ID, taskTTL)
			_ = q.settle(ctx, task, false)
			continue
		}

		task.MarkProcessing()
		if err := q.save(ctx, task, stream+" "+msg.ID); err != nil {
			return nil, err
		}
		return task, nil
	}

	return nil, nil
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
