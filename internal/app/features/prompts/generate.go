// internal/app/features/prompts/generate.go
package prompts

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/limits"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

const (
	defaultCount = 4
	maxCount     = 8
	// temperature keeps generations varied without drifting off-topic.
	temperature = 0.7
)

// generateRequest is the JSON body for POST /api/prompts.
type generateRequest struct {
	CircleID string `json:"circleId,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// ServeGenerate handles POST /api/prompts.
func (h *Handler) ServeGenerate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	if h.Completer == nil {
		httpjson.Upstream(w, "prompt generation is not configured")
		return
	}

	var req generateRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Validation(w, "invalid JSON body")
		return
	}

	count := req.Count
	if count <= 0 {
		count = defaultCount
	}
	if count > maxCount {
		count = maxCount
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var circle models.Circle
	var tagConfigs []models.TagConfig
	if req.CircleID != "" {
		set, err := h.Authz.Load(ctx, claims.Subject)
		if err != nil {
			h.Log.Error("failed to load memberships",
				zap.String("user_id", claims.Subject), zap.Error(err))
			httpjson.Internal(w)
			return
		}
		if !set.Contains(req.CircleID) {
			httpjson.Forbidden(w, "not a member of this circle")
			return
		}

		circle, err = h.Circles.GetByID(ctx, req.CircleID)
		if err != nil {
			h.Log.Error("failed to load circle",
				zap.String("circle_id", req.CircleID), zap.Error(err))
			httpjson.Internal(w)
			return
		}

		for _, key := range circle.Tags {
			cfg, ok, err := h.Tags.Get(ctx, key)
			if err != nil {
				h.Log.Error("failed to resolve tag", zap.String("tag", key), zap.Error(err))
				httpjson.Internal(w)
				return
			}
			if ok {
				tagConfigs = append(tagConfigs, cfg)
			}
		}
	}

	instruction := BuildInstruction(circle.Name, tagConfigs, count)

	raw, err := h.Completer.Complete(ctx, instruction, temperature)
	if err != nil {
		h.Log.Warn("prompt completion failed", zap.Error(err))
		httpjson.Upstream(w, "prompt generation is unavailable")
		return
	}

	generated := ParseCompletion(raw, count)
	if len(generated) == 0 {
		h.Log.Warn("prompt completion produced no usable prompts",
			zap.Int("raw_len", len(raw)))
		httpjson.Upstream(w, "prompt generation is unavailable")
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{"prompts": generated})
}

// BuildInstruction composes the natural-language instruction for the
// completion model. Tags in the "support" category switch the tone
// directive to gentle, support-safe phrasing.
func BuildInstruction(circleName string, tags []models.TagConfig, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d short conversation-starter questions for a private family messaging group.", count)

	if circleName != "" {
		fmt.Fprintf(&b, " The group is called %q.", circleName)
	}

	var labels []string
	var support bool
	var guidance []string
	for _, t := range tags {
		labels = append(labels, t.DisplayLabel)
		if t.Category == "support" {
			support = true
		}
		if t.ToneGuidance != "" {
			guidance = append(guidance, t.ToneGuidance)
		}
	}
	if len(labels) > 0 {
		fmt.Fprintf(&b, " The group describes itself with: %s.", strings.Join(labels, ", "))
	}

	if support {
		b.WriteString(" Some members may be going through a difficult time." +
			" Keep every question gentle, optional to answer, and free of assumptions;" +
			" avoid forced positivity and avoid probing for painful details.")
	} else {
		b.WriteString(" Tailor the questions to the group's interests and keep them" +
			" warm, specific, and easy for any generation to answer.")
	}
	for _, g := range guidance {
		b.WriteString(" " + g)
	}

	b.WriteString(" Respond with only a JSON array of strings, one question per element.")
	return b.String()
}
