// internal/app/features/circles/tags.go
package circles

import (
	"context"
	"net/http"

	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

// ServeTags handles GET /api/circles/tags.
// Serves the active tag configs from the process-lifetime cache.
func (h *Handler) ServeTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tags, err := h.Tags.ListActive(ctx)
	if err != nil {
		h.Log.Error("failed to load tag configs", zap.Error(err))
		httpjson.Internal(w)
		return
	}
	if tags == nil {
		tags = []models.TagConfig{}
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"tags": tags})
}
