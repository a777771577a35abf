package workers_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	subscriptionstore "github.com/dalemusser/circles/internal/app/store/subscriptions"
	"github.com/dalemusser/circles/internal/app/system/events"
	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/app/system/push"
	"github.com/dalemusser/circles/internal/app/system/workers"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/dalemusser/circles/internal/testutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fakePusher records sends and can fail specific endpoints.
type fakePusher struct {
	mu       sync.Mutex
	sent     []sentPush
	goneFor  map[string]bool
	errorFor map[string]error
}

type sentPush struct {
	sub     models.PushSubscription
	payload []byte
}

func newFakePusher() *fakePusher {
	return &fakePusher{
		goneFor:  make(map[string]bool),
		errorFor: make(map[string]error),
	}
}

func (f *fakePusher) Send(_ context.Context, sub models.PushSubscription, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.goneFor[sub.Endpoint] {
		return push.ErrSubscriptionGone
	}
	if err := f.errorFor[sub.Endpoint]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentPush{sub: sub, payload: payload})
	return nil
}

func (f *fakePusher) sends() []sentPush {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentPush, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestNotifier(t *testing.T) (*workers.Notifier, *fakePusher, *membershipstore.Store, *subscriptionstore.Store) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	queue := events.New(rdb, zap.NewNop())
	memberStore := membershipstore.New(db)
	subStore := subscriptionstore.New(db)
	pusher := newFakePusher()

	notifier := workers.NewNotifier(queue, memberStore, subStore, pusher, "https://circles.example.com", zap.NewNop())
	return notifier, pusher, memberStore, subStore
}

func TestNotifier_ProcessEvent_ExcludesActor(t *testing.T) {
	notifier, pusher, memberStore, subStore := newTestNotifier(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circleID := ids.NewCircleID()
	for _, userID := range []string{"user_actor", "user_a", "user_b"} {
		if err := memberStore.Add(ctx, userID, circleID, models.RoleMember, userID); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		_, err := subStore.Upsert(ctx, models.PushSubscription{
			ID:       ids.NewSubscriptionID(),
			UserID:   userID,
			Endpoint: "https://push.example.com/" + userID,
			P256dh:   "k", Auth: "a",
		})
		if err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	ev := models.PushEvent{
		EventID:     ids.NewEventID(),
		Type:        models.EventNewQuestion,
		CircleID:    circleID,
		CircleName:  "The Martins",
		Preview:     "What was your first concert?",
		ActorUserID: "user_actor",
	}

	if err := notifier.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	sends := pusher.sends()
	if len(sends) != 2 {
		t.Fatalf("expected 2 pushes, got %d", len(sends))
	}
	for _, s := range sends {
		if s.sub.UserID == "user_actor" {
			t.Error("actor must not receive a push for their own message")
		}
	}
}

func TestNotifier_ProcessEvent_PayloadContent(t *testing.T) {
	notifier, pusher, memberStore, subStore := newTestNotifier(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circleID := ids.NewCircleID()
	if err := memberStore.Add(ctx, "user_a", circleID, models.RoleMember, "A"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := subStore.Upsert(ctx, models.PushSubscription{
		ID: ids.NewSubscriptionID(), UserID: "user_a",
		Endpoint: "https://push.example.com/a", P256dh: "k", Auth: "a",
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	questionID := ids.NewMessageID()
	answerID := ids.NewMessageID()
	ev := models.PushEvent{
		EventID:     ids.NewEventID(),
		Type:        models.EventNewAnswer,
		CircleID:    circleID,
		CircleName:  "The Martins",
		QuestionID:  questionID,
		AnswerID:    answerID,
		Preview:     "It was a Beatles cover band",
		ActorUserID: "user_actor",
	}

	if err := notifier.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	sends := pusher.sends()
	if len(sends) != 1 {
		t.Fatalf("expected 1 push, got %d", len(sends))
	}

	var payload struct {
		Title      string `json:"title"`
		Body       string `json:"body"`
		CircleID   string `json:"circleId"`
		URL        string `json:"url"`
		QuestionID string `json:"questionId"`
		AnswerID   string `json:"answerId"`
	}
	if err := json.Unmarshal(sends[0].payload, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if !strings.Contains(payload.Title, "The Martins") {
		t.Errorf("title should name the circle, got %q", payload.Title)
	}
	if !strings.Contains(payload.Title, "answer") {
		t.Errorf("answer event title: got %q", payload.Title)
	}
	if payload.Body != ev.Preview {
		t.Errorf("body: got %q, want %q", payload.Body, ev.Preview)
	}
	if payload.URL != "https://circles.example.com/circles/"+circleID {
		t.Errorf("url: got %q", payload.URL)
	}
	if payload.QuestionID != questionID || payload.AnswerID != answerID {
		t.Errorf("message ids not carried through payload")
	}
}

func TestNotifier_ProcessEvent_RedeliveryDeduped(t *testing.T) {
	notifier, pusher, memberStore, subStore := newTestNotifier(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circleID := ids.NewCircleID()
	if err := memberStore.Add(ctx, "user_a", circleID, models.RoleMember, "A"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := subStore.Upsert(ctx, models.PushSubscription{
		ID: ids.NewSubscriptionID(), UserID: "user_a",
		Endpoint: "https://push.example.com/a", P256dh: "k", Auth: "a",
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	ev := models.PushEvent{
		EventID:     ids.NewEventID(),
		Type:        models.EventNewQuestion,
		CircleID:    circleID,
		CircleName:  "The Martins",
		ActorUserID: "user_actor",
	}

	// Same event processed twice, as the queue's at-least-once delivery
	// allows. The dedup claim absorbs the second pass.
	if err := notifier.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("first ProcessEvent failed: %v", err)
	}
	if err := notifier.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("second ProcessEvent failed: %v", err)
	}

	if got := len(pusher.sends()); got != 1 {
		t.Errorf("expected 1 push after redelivery, got %d", got)
	}
}

func TestNotifier_ProcessEvent_GoneSubscriptionRemoved(t *testing.T) {
	notifier, pusher, memberStore, subStore := newTestNotifier(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circleID := ids.NewCircleID()
	if err := memberStore.Add(ctx, "user_a", circleID, models.RoleMember, "A"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := subStore.Upsert(ctx, models.PushSubscription{
		ID: ids.NewSubscriptionID(), UserID: "user_a",
		Endpoint: "https://push.example.com/stale", P256dh: "k", Auth: "a",
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	pusher.goneFor["https://push.example.com/stale"] = true

	ev := models.PushEvent{
		EventID:     ids.NewEventID(),
		Type:        models.EventNewQuestion,
		CircleID:    circleID,
		ActorUserID: "user_actor",
	}

	if err := notifier.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	subs, err := subStore.ListByUser(ctx, "user_a")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("stale subscription should have been removed, %d remain", len(subs))
	}
}

func TestNotifier_ProcessEvent_SendFailureDoesNotFailEvent(t *testing.T) {
	notifier, pusher, memberStore, subStore := newTestNotifier(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	circleID := ids.NewCircleID()
	for _, userID := range []string{"user_a", "user_b"} {
		if err := memberStore.Add(ctx, userID, circleID, models.RoleMember, userID); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if _, err := subStore.Upsert(ctx, models.PushSubscription{
			ID: ids.NewSubscriptionID(), UserID: userID,
			Endpoint: "https://push.example.com/" + userID, P256dh: "k", Auth: "a",
		}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	pusher.errorFor["https://push.example.com/user_a"] = context.DeadlineExceeded

	ev := models.PushEvent{
		EventID:     ids.NewEventID(),
		Type:        models.EventNewQuestion,
		CircleID:    circleID,
		ActorUserID: "user_actor",
	}

	if err := notifier.ProcessEvent(ctx, ev); err != nil {
		t.Fatalf("per-subscription failures must not fail the event: %v", err)
	}
	if got := len(pusher.sends()); got != 1 {
		t.Errorf("expected 1 successful push, got %d", got)
	}
}

func TestNotifier_StartStop(t *testing.T) {
	notifier, _, _, _ := newTestNotifier(t)

	notifier.Start()
	notifier.Stop()
}
