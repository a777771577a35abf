// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	subscriptionstore "github.com/dalemusser/circles/internal/app/store/subscriptions"
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/app/system/limits"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

// Handler manages per-device push subscriptions.
type Handler struct {
	Subscriptions *subscriptionstore.Store
	VAPIDPublic   string
	Log           *zap.Logger
}

// NewHandler creates a notifications handler. vapidPublic is exposed to
// clients so the browser can subscribe with the matching key.
func NewHandler(subStore *subscriptionstore.Store, vapidPublic string, logger *zap.Logger) *Handler {
	return &Handler{
		Subscriptions: subStore,
		VAPIDPublic:   vapidPublic,
		Log:           logger,
	}
}

// subscribeRequest mirrors the browser PushSubscription JSON.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// ServeSubscribe handles POST /api/notifications/subscribe.
// Re-registering an existing endpoint is an upsert, not an error.
func (h *Handler) ServeSubscribe(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	var req subscribeRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Validation(w, "invalid JSON body")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		httpjson.Validation(w, "endpoint and keys are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.Subscriptions.Upsert(ctx, models.PushSubscription{
		ID:        ids.NewSubscriptionID(),
		UserID:    claims.Subject,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.Log.Error("failed to save push subscription",
			zap.String("user_id", claims.Subject), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	httpjson.Respond(w, http.StatusCreated, map[string]any{
		"subscriptionId": sub.ID,
		"vapidPublicKey": h.VAPIDPublic,
	})
}

// unsubscribeRequest identifies the subscription by its endpoint, which
// is what the browser still knows after a service-worker update.
type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// ServeUnsubscribe handles POST /api/notifications/unsubscribe.
func (h *Handler) ServeUnsubscribe(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	var req unsubscribeRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Validation(w, "invalid JSON body")
		return
	}
	if req.Endpoint == "" {
		httpjson.Validation(w, "endpoint is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Subscriptions.DeleteByEndpoint(ctx, claims.Subject, req.Endpoint)
	if err != nil {
		if errors.Is(err, subscriptionstore.ErrNotFound) {
			httpjson.NotFound(w, "subscription not found")
			return
		}
		h.Log.Error("failed to delete push subscription",
			zap.String("user_id", claims.Subject), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"removed": true})
}
