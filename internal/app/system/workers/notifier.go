// internal/app/system/workers/notifier.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	subscriptionstore "github.com/dalemusser/circles/internal/app/store/subscriptions"
	"github.com/dalemusser/circles/internal/app/system/events"
	"github.com/dalemusser/circles/internal/app/system/push"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

const (
	// maxAttempts bounds retries of a failing event before it is parked
	// on the dead-letter list.
	maxAttempts = 3
	// dequeueWait is how long each BRPOP blocks before the loop checks
	// for shutdown.
	dequeueWait = 5 * time.Second
)

// Notifier is the background worker that fans queued push events out to
// circle members' device subscriptions.
type Notifier struct {
	queue         *events.Queue
	memberships   *membershipstore.Store
	subscriptions *subscriptionstore.Store
	pusher        push.Pusher
	baseURL       string
	log           *zap.Logger
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewNotifier creates the fan-out worker. baseURL is the public origin
// used to build click-through URLs in notification payloads.
func NewNotifier(queue *events.Queue, memberStore *membershipstore.Store, subStore *subscriptionstore.Store, pusher push.Pusher, baseURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		queue:         queue,
		memberships:   memberStore,
		subscriptions: subStore,
		pusher:        pusher,
		baseURL:       baseURL,
		log:           logger,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the consume loop.
func (w *Notifier) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("notification worker started")
}

// Stop signals the worker to stop and waits for the in-flight event to
// finish.
func (w *Notifier) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notification worker stopped")
}

func (w *Notifier) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), dequeueWait+30*time.Second)
		ev, err := w.queue.Dequeue(ctx, dequeueWait)
		if err != nil {
			cancel()
			if errors.Is(err, events.ErrEmpty) {
				continue
			}
			w.log.Error("dequeue failed", zap.Error(err))
			// Back off so a down Redis does not spin the loop.
			select {
			case <-w.stopCh:
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		if err := w.ProcessEvent(ctx, ev); err != nil {
			w.log.Error("event processing failed",
				zap.String("event_id", ev.EventID),
				zap.Int("attempts", ev.Attempts),
				zap.Error(err))
			if ev.Attempts+1 >= maxAttempts {
				if dlErr := w.queue.DeadLetter(ctx, ev); dlErr != nil {
					w.log.Error("dead-letter failed", zap.Error(dlErr))
				}
			} else if rErr := w.queue.Retry(ctx, ev); rErr != nil {
				w.log.Error("retry enqueue failed", zap.Error(rErr))
			}
		}
		cancel()
	}
}

// ProcessEvent delivers one event to every member of the circle except
// the actor. Per-subscription failures are logged and do not fail the
// event; only a failure to resolve the audience does.
func (w *Notifier) ProcessEvent(ctx context.Context, ev models.PushEvent) error {
	members, err := w.memberships.ListByCircle(ctx, ev.CircleID)
	if err != nil {
		return fmt.Errorf("list circle members: %w", err)
	}

	payload, err := w.buildPayload(ev)
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	seen := make(map[string]bool, len(members))
	var sent, skipped, failed int
	for _, m := range members {
		if m.UserID == ev.ActorUserID || seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true

		subs, err := w.subscriptions.ListByUser(ctx, m.UserID)
		if err != nil {
			w.log.Warn("list subscriptions failed",
				zap.String("user_id", m.UserID), zap.Error(err))
			failed++
			continue
		}

		for _, sub := range subs {
			won, err := w.queue.ClaimDelivery(ctx, ev.EventID, sub.ID)
			if err != nil {
				w.log.Warn("delivery claim failed", zap.Error(err))
				failed++
				continue
			}
			if !won {
				skipped++
				continue
			}

			switch err := w.pusher.Send(ctx, sub, payload); {
			case errors.Is(err, push.ErrSubscriptionGone):
				if delErr := w.subscriptions.DeleteByID(ctx, sub.ID); delErr != nil {
					w.log.Warn("stale subscription cleanup failed",
						zap.String("subscription_id", sub.ID), zap.Error(delErr))
				} else {
					w.log.Info("removed stale subscription",
						zap.String("subscription_id", sub.ID))
				}
			case err != nil:
				w.log.Warn("push send failed",
					zap.String("subscription_id", sub.ID), zap.Error(err))
				failed++
			default:
				sent++
			}
		}
	}

	w.log.Info("event delivered",
		zap.String("event_id", ev.EventID),
		zap.String("type", ev.Type),
		zap.String("circle_id", ev.CircleID),
		zap.Int("sent", sent),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	return nil
}

// notificationPayload is the JSON the service worker receives.
type notificationPayload struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	CircleID   string `json:"circleId"`
	URL        string `json:"url"`
	QuestionID string `json:"questionId,omitempty"`
	AnswerID   string `json:"answerId,omitempty"`
}

func (w *Notifier) buildPayload(ev models.PushEvent) ([]byte, error) {
	p := notificationPayload{
		CircleID:   ev.CircleID,
		URL:        fmt.Sprintf("%s/circles/%s", w.baseURL, ev.CircleID),
		QuestionID: ev.QuestionID,
		AnswerID:   ev.AnswerID,
	}
	switch ev.Type {
	case models.EventNewAnswer:
		p.Title = fmt.Sprintf("New answer in %s", ev.CircleName)
		p.Body = ev.Preview
	default:
		p.Title = fmt.Sprintf("New question in %s", ev.CircleName)
		p.Body = ev.Preview
	}
	return json.Marshal(p)
}
