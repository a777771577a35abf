// internal/app/features/circles/members.go
package circles

import (
	"context"
	"net/http"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeMembers handles GET /api/circles/members?familyId=.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	circleID := query.Get(r, "familyId")
	if circleID == "" {
		httpjson.Validation(w, "familyId is required")
		return
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

	members, err := h.Memberships.ListByCircle(ctx, circleID)
	if err != nil {
		h.Log.Error("failed to list members",
			zap.String("circle_id", circleID), zap.Error(err))
		httpjson.Internal(w)
		return
	}
	if members == nil {
		members = []models.Membership{}
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"circleId": circleID,
		"members":  members,
	})
}
