// internal/app/features/circles/invitationcreate.go
package circles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/app/system/limits"
	"github.com/dalemusser/circles/internal/app/system/mailer"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// createInvitationRequest is the JSON body for invitation creation.
type createInvitationRequest struct {
	InvitedEmail  string `json:"invitedEmail"`
	Role          string `json:"role,omitempty"`
	ExpiresInDays int    `json:"expiresInDays,omitempty"`
	MaxUses       int    `json:"maxUses,omitempty"`
}

// ServeCreateInvitation handles POST /api/circles/{circleID}/invitations.
func (h *Handler) ServeCreateInvitation(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)
	circleID := chi.URLParam(r, "circleID")

	if h.InviteLimiter != nil {
		if allowed, reason := h.InviteLimiter.Check(r, claims.Subject); !allowed {
			httpjson.RateLimited(w, reason)
			return
		}
	}

	var req createInvitationRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Validation(w, "invalid JSON body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.InvitedEmail))
	if email == "" || !strings.Contains(email, "@") {
		httpjson.Validation(w, "invitedEmail must be a valid email address")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleOwner {
		httpjson.Validation(w, "role must be owner or member")
		return
	}

	days := req.ExpiresInDays
	if days <= 0 {
		days = h.Cfg.InviteExpireDays
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

	circle, err := h.Circles.GetByID(ctx, circleID)
	if err != nil {
		h.Log.Error("failed to load circle",
			zap.String("circle_id", circleID), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	inv := models.Invitation{
		ID:           ids.NewInvitationID(),
		CircleID:     circleID,
		InvitedEmail: email,
		Role:         role,
		CreatedBy:    claims.Subject,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour),
		MaxUses:      req.MaxUses,
	}

	created, err := h.Invitations.Create(ctx, inv)
	if err != nil {
		h.Log.Error("failed to create invitation",
			zap.String("circle_id", circleID), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	h.sendInviteEmail(created, circle.Name, claims.DisplayName(), days)

	httpjson.Respond(w, http.StatusCreated, created)
}

// sendInviteEmail is best-effort: a delivery failure is logged and
// swallowed, never failing the invitation that was already written.
func (h *Handler) sendInviteEmail(inv models.Invitation, circleName, inviterName string, days int) {
	if h.Mailer == nil {
		return
	}

	acceptLink := fmt.Sprintf("%s/invitations/accept?invitationId=%s",
		strings.TrimRight(h.Cfg.BaseURL, "/"), url.QueryEscape(inv.ID))

	email := mailer.BuildInviteEmail(mailer.InviteEmailData{
		SiteName:    h.Cfg.SiteName,
		CircleName:  circleName,
		InviterName: inviterName,
		AcceptLink:  acceptLink,
		ExpiresIn:   fmt.Sprintf("%d days", days),
	})
	email.To = inv.InvitedEmail

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	if err := h.Mailer.Send(ctx, email); err != nil {
		h.Log.Warn("invite email delivery failed",
			zap.String("invitation_id", inv.ID),
			zap.String("invited_email", inv.InvitedEmail),
			zap.Error(err))
	}
}
