// internal/app/system/events/queue.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultKey is the Redis list carrying pending push events.
	DefaultKey = "circles:events"
	// DeadLetterKey holds payloads that could not be processed.
	DeadLetterKey = "circles:events:dead"
	// dedupTTL bounds how long delivery dedup keys survive. Queue
	// redeliveries land well inside this window.
	dedupTTL = 24 * time.Hour
)

// ErrEmpty is returned by Dequeue when no event arrived within the wait.
var ErrEmpty = errors.New("queue empty")

// Queue is the push-event queue between the message pipeline and the
// notification fan-out worker, backed by a Redis list. Delivery is
// at-least-once: a worker crash after dequeue loses nothing upstream
// but may redeliver, which the dedup keys absorb.
type Queue struct {
	rdb *redis.Client
	key string
	log *zap.Logger
}

// New creates a Queue on the given Redis client.
func New(rdb *redis.Client, logger *zap.Logger) *Queue {
	return &Queue{rdb: rdb, key: DefaultKey, log: logger}
}

// Enqueue pushes an event onto the queue. Callers on the write path
// treat failure as best-effort: a successful message write is never
// unwound because its event could not be queued.
func (q *Queue) Enqueue(ctx context.Context, ev models.PushEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal push event: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue push event: %w", err)
	}
	return nil
}

// Dequeue blocks up to wait for the next event. A payload that does not
// decode goes straight to the dead-letter list and is reported as
// ErrEmpty so the consumer loop keeps going.
func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (models.PushEvent, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.key).Result()
	if err == redis.Nil {
		return models.PushEvent{}, ErrEmpty
	}
	if err != nil {
		return models.PushEvent{}, err
	}
	// BRPop returns [key, value].
	payload := res[1]

	var ev models.PushEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		q.log.Warn("dead-lettering undecodable push event", zap.Error(err))
		if dlErr := q.rdb.LPush(ctx, DeadLetterKey, payload).Err(); dlErr != nil {
			q.log.Error("dead-letter push failed", zap.Error(dlErr))
		}
		return models.PushEvent{}, ErrEmpty
	}
	return ev, nil
}

// Retry re-queues an event after a processing failure, bumping its
// attempt count. The worker dead-letters once attempts pass its bound.
func (q *Queue) Retry(ctx context.Context, ev models.PushEvent) error {
	ev.Attempts++
	return q.Enqueue(ctx, ev)
}

// DeadLetter parks an event that exhausted its attempts.
func (q *Queue) DeadLetter(ctx context.Context, ev models.PushEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, DeadLetterKey, payload).Err()
}

// ClaimDelivery records that (eventID, subscriptionID) is being
// delivered and reports whether this worker won the claim. A redelivered
// event finds the key set and skips the duplicate push.
func (q *Queue) ClaimDelivery(ctx context.Context, eventID, subscriptionID string) (bool, error) {
	key := fmt.Sprintf("circles:delivered:%s:%s", eventID, subscriptionID)
	return q.rdb.SetNX(ctx, key, 1, dedupTTL).Result()
}

// Len returns the number of pending events.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

// Ping verifies Redis connectivity for health checks.
func (q *Queue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
