// internal/app/features/circles/circlecreate.go
package circles

import (
	"context"
	"net/http"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/app/system/limits"
	"github.com/dalemusser/circles/internal/app/system/sanitize"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

// createCircle handles POST /api/circles with action "createCircle".
// The creator becomes the circle's owner.
func (h *Handler) createCircle(w http.ResponseWriter, r *http.Request, claims auth.Claims, req createRequest) {
	name := sanitize.Text(req.Name)
	if name == "" {
		httpjson.Validation(w, "name is required")
		return
	}
	if len(name) > limits.MaxCircleName {
		httpjson.Validation(w, "name is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Unknown or inactive tag keys are dropped silently.
	tags, err := h.Tags.FilterKnown(ctx, req.Tags)
	if err != nil {
		h.Log.Error("failed to resolve tags", zap.Error(err))
		httpjson.Internal(w)
		return
	}

	circle := models.Circle{
		ID:          ids.NewCircleID(),
		Name:        name,
		Description: sanitize.Text(req.Description),
		Tags:        tags,
		CreatedBy:   claims.Subject,
	}

	created, err := h.Circles.Create(ctx, circle)
	if err != nil {
		h.Log.Error("failed to create circle",
			zap.String("circle_id", circle.ID), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	// The owner membership is a second write; a failure here leaves a
	// circle with no members, which is unreachable anyway since the id
	// is never user-guessable. Surfaced as an error so the client can
	// retry the whole creation.
	if err := h.Memberships.Add(ctx, claims.Subject, created.ID, models.RoleOwner, claims.DisplayName()); err != nil {
		h.Log.Error("circle created but owner membership write failed",
			zap.String("circle_id", created.ID),
			zap.String("user_id", claims.Subject),
			zap.Error(err))
		httpjson.Internal(w)
		return
	}

	h.Log.Info("circle created",
		zap.String("circle_id", created.ID),
		zap.String("user_id", claims.Subject))

	httpjson.Respond(w, http.StatusCreated, map[string]any{
		"circleId":    created.ID,
		"name":        created.Name,
		"description": created.Description,
		"tags":        created.Tags,
		"role":        models.RoleOwner,
		"createdAt":   created.CreatedAt,
	})
}
