// internal/app/features/circles/config.go
package circles

import (
	"context"
	"net/http"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// circleSummary is one entry in the caller's circle list.
type circleSummary struct {
	CircleID    string   `json:"circleId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Role        string   `json:"role"`
}

// ServeConfig handles GET /api/circles/config.
// Returns every circle the caller belongs to, with their role. Circle
// metadata is resolved with one batched query rather than per circle.
func (h *Handler) ServeConfig(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	set, err := h.Authz.Load(ctx, claims.Subject)
	if err != nil {
		h.Log.Error("failed to load memberships",
			zap.String("user_id", claims.Subject), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	circleByID, err := h.Circles.GetMany(ctx, set.CircleIDs())
	if err != nil {
		h.Log.Error("failed to load circles",
			zap.String("user_id", claims.Subject), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	summaries := make([]circleSummary, 0, set.Len())
	for _, m := range set.Memberships() {
		circle, ok := circleByID[m.CircleID]
		if !ok {
			// Membership pointing at a circle that no longer resolves;
			// skip rather than fail the whole list.
			h.Log.Warn("membership references missing circle",
				zap.String("circle_id", m.CircleID),
				zap.String("user_id", m.UserID))
			continue
		}
		summaries = append(summaries, circleSummary{
			CircleID:    circle.ID,
			Name:        circle.Name,
			Description: circle.Description,
			Tags:        circle.Tags,
			Role:        m.Role,
		})
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"circles": summaries})
}
