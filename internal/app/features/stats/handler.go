// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"net/http"

	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves aggregate counts over circles and memberships.
type Handler struct {
	Circles     *circlestore.Store
	Memberships *membershipstore.Store
	Log         *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(circleStore *circlestore.Store, memberStore *membershipstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Circles:     circleStore,
		Memberships: memberStore,
		Log:         logger,
	}
}

// ServeStats handles GET /api/stats.
// Full-collection aggregates; acceptable only while the deployment
// stays small.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	circleCount, err := h.Circles.Count(ctx)
	if err != nil {
		h.Log.Error("failed to count circles", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	membershipCount, err := h.Memberships.Count(ctx)
	if err != nil {
		h.Log.Error("failed to count memberships", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	uniqueMembers, err := h.Memberships.CountUniqueUsers(ctx)
	if err != nil {
		h.Log.Error("failed to count unique members", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	perCircle, err := h.Memberships.CountPerCircle(ctx)
	if err != nil {
		h.Log.Error("failed to count members per circle", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"totalCircles":     circleCount,
		"totalMemberships": membershipCount,
		"uniqueMembers":    uniqueMembers,
		"membersPerCircle": perCircle,
	})
}
