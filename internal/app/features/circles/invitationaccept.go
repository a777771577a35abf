// internal/app/features/circles/invitationaccept.go
package circles

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	invitationstore "github.com/dalemusser/circles/internal/app/store/invitations"
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/limits"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/app/system/txn"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

// acceptInvitationRequest is the JSON body for invitation acceptance.
type acceptInvitationRequest struct {
	InvitationID string `json:"invitationId"`
}

// ServeAcceptInvitation handles POST /api/circles/invitations/accept.
// The membership upsert and the invitation state transition run inside
// one Mongo transaction where the topology supports it.
func (h *Handler) ServeAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	var req acceptInvitationRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Validation(w, "invalid JSON body")
		return
	}
	if req.InvitationID == "" {
		httpjson.Validation(w, "invitationId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Invitations.GetByID(ctx, req.InvitationID)
	if err != nil {
		if errors.Is(err, invitationstore.ErrNotFound) {
			httpjson.NotFound(w, "invitation not found")
			return
		}
		h.Log.Error("failed to load invitation",
			zap.String("invitation_id", req.InvitationID), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	if stateErr := invitationstore.Classify(inv, time.Now().UTC()); stateErr != nil {
		h.respondInvitationError(w, stateErr)
		return
	}

	// Email mismatch is logged but not enforced; invitation links are
	// routinely forwarded within a family.
	if inv.InvitedEmail != "" && claims.Email != "" &&
		!strings.EqualFold(inv.InvitedEmail, claims.Email) {
		h.Log.Info("invitation accepted by different email than invited",
			zap.String("invitation_id", inv.ID),
			zap.String("invited_email", inv.InvitedEmail),
			zap.String("accepting_email", claims.Email))
	}

	var accepted models.Invitation
	acceptFn := func(ctx context.Context) error {
		if err := h.Memberships.Upsert(ctx, claims.Subject, inv.CircleID, inv.Role, claims.DisplayName()); err != nil {
			return err
		}
		result, err := h.Invitations.MarkAccepted(ctx, inv.ID, claims.Subject)
		if err != nil {
			return err
		}
		accepted = result
		return nil
	}

	if h.Mongo != nil {
		err = txn.WithTransaction(ctx, h.Mongo, h.Log, acceptFn)
	} else {
		err = acceptFn(ctx)
	}
	if err != nil {
		if errors.Is(err, invitationstore.ErrExpired) ||
			errors.Is(err, invitationstore.ErrAlreadyUsed) ||
			errors.Is(err, invitationstore.ErrInvalidState) ||
			errors.Is(err, invitationstore.ErrNotFound) {
			h.respondInvitationError(w, err)
			return
		}
		h.Log.Error("invitation accept failed",
			zap.String("invitation_id", inv.ID),
			zap.String("user_id", claims.Subject),
			zap.Error(err))
		httpjson.Internal(w)
		return
	}

	h.Log.Info("invitation accepted",
		zap.String("invitation_id", accepted.ID),
		zap.String("circle_id", accepted.CircleID),
		zap.String("user_id", claims.Subject))

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"circleId":   accepted.CircleID,
		"role":       accepted.Role,
		"status":     accepted.Status,
		"acceptedAt": accepted.AcceptedAt,
	})
}

func (h *Handler) respondInvitationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invitationstore.ErrNotFound):
		httpjson.NotFound(w, "invitation not found")
	case errors.Is(err, invitationstore.ErrExpired):
		httpjson.Gone(w, "invitation expired")
	case errors.Is(err, invitationstore.ErrAlreadyUsed):
		httpjson.Gone(w, "invitation already used")
	case errors.Is(err, invitationstore.ErrInvalidState):
		httpjson.Validation(w, "invitation is not pending")
	default:
		httpjson.Internal(w)
	}
}
