// internal/app/features/circles/messagelist.go
package circles

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeListMessages handles GET /api/circles?familyId=&limit=.
// Returns the most recent messages for the circle, newest first.
func (h *Handler) ServeListMessages(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	circleID := query.Get(r, "familyId")
	if circleID == "" {
		httpjson.Validation(w, "familyId is required")
		return
	}

	limit := h.Cfg.DefaultListLimit
	if raw := query.Get(r, "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpjson.Validation(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > h.Cfg.MaxListLimit {
		limit = h.Cfg.MaxListLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	set, err := h.Authz.Load(ctx, claims.Subject)
	if err != nil {
		h.Log.Error("failed to load memberships",
			zap.String("user_id", claims.Subject), zap.Error(err))
		httpjson.Internal(w)
		return
	}
	if !set.Contains(circleID) {
		httpjson.Forbidden(w, "not a member of this circle")
		return
	}

	msgs, err := h.Messages.ListByCircle(ctx, circleID, int64(limit))
	if err != nil {
		h.Log.Error("failed to list messages",
			zap.String("circle_id", circleID), zap.Error(err))
		httpjson.Internal(w)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"messages":    msgs,
		"circleId":    circleID,
		"retrievedAt": time.Now().UTC(),
	})
}
