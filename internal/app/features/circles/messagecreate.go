// internal/app/features/circles/messagecreate.go
package circles

import (
	"context"
	"errors"
	"net/http"

	messagestore "github.com/dalemusser/circles/internal/app/store/messages"
	"github.com/dalemusser/circles/internal/app/system/auth"
	"github.com/dalemusser/circles/internal/app/system/httpjson"
	"github.com/dalemusser/circles/internal/app/system/ids"
	"github.com/dalemusser/circles/internal/app/system/limits"
	"github.com/dalemusser/circles/internal/app/system/sanitize"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/circles/internal/domain/models"
	"go.uber.org/zap"
)

// createRequest is the JSON body for POST /api/circles. One endpoint
// serves two operations: message creation (the default) and circle
// creation when action is "createCircle".
type createRequest struct {
	Action string `json:"action,omitempty"`

	// Message creation fields.
	FamilyID    string `json:"familyId,omitempty"`
	Text        string `json:"text,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
	QuestionID  string `json:"questionId,omitempty"`

	// Circle creation fields.
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ServeCreate handles POST /api/circles.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.CurrentClaims(r)

	var req createRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Validation(w, "invalid JSON body")
		return
	}

	if req.Action == "createCircle" {
		h.createCircle(w, r, claims, req)
		return
	}
	h.createMessage(w, r, claims, req)
}

func (h *Handler) createMessage(w http.ResponseWriter, r *http.Request, claims auth.Claims, req createRequest) {
	if req.FamilyID == "" {
		httpjson.Validation(w, "familyId is required")
		return
	}

	text := sanitize.Text(req.Text)
	if text == "" {
		httpjson.Validation(w, "text is required")
		return
	}
	if len(text) > limits.MaxMessageText {
		httpjson.Validation(w, "text is too long")
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
	if !set.Contains(req.FamilyID) {
		httpjson.Forbidden(w, "not a member of this circle")
		return
	}

	// Anything other than an explicit "question" is an answer.
	msgType := models.MessageTypeAnswer
	if req.MessageType == models.MessageTypeQuestion {
		msgType = models.MessageTypeQuestion
	}

	messageID := req.MessageID
	if messageID == "" {
		messageID = ids.NewMessageID()
	}

	// The question link is a soft convention; a dangling reference is
	// logged, never rejected.
	if msgType == models.MessageTypeAnswer && req.QuestionID != "" {
		exists, err := h.Messages.ExistsMessageID(ctx, req.FamilyID, req.QuestionID)
		switch {
		case err != nil:
			h.Log.Warn("failed to check question reference",
				zap.String("circle_id", req.FamilyID),
				zap.String("question_id", req.QuestionID),
				zap.Error(err))
		case !exists:
			h.Log.Warn("answer references unknown question",
				zap.String("circle_id", req.FamilyID),
				zap.String("question_id", req.QuestionID))
		}
	}

	msg := models.Message{
		MessageID:   messageID,
		CircleID:    req.FamilyID,
		Author:      claims.Subject,
		AuthorName:  claims.DisplayName(),
		Text:        text,
		MessageType: msgType,
	}
	if msgType == models.MessageTypeAnswer {
		msg.QuestionID = req.QuestionID
	}

	created, err := h.Messages.Create(ctx, msg)
	if err != nil {
		if errors.Is(err, messagestore.ErrDuplicateMessageID) {
			httpjson.Conflict(w, "a message with this id already exists")
			return
		}
		h.Log.Error("failed to create message",
			zap.String("circle_id", req.FamilyID), zap.Error(err))
		httpjson.Internal(w)
		return
	}

	// The write succeeded; event emission is strictly best-effort from
	// here on and never unwinds it.
	h.enqueueMessageEvent(created)

	httpjson.Respond(w, http.StatusCreated, created)
}

func (h *Handler) enqueueMessageEvent(msg models.Message) {
	if h.Queue == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	circleName := msg.CircleID
	if circle, err := h.Circles.GetByID(ctx, msg.CircleID); err == nil {
		circleName = circle.Name
	}

	ev := models.PushEvent{
		EventID:     ids.NewEventID(),
		CircleID:    msg.CircleID,
		CircleName:  circleName,
		Preview:     sanitize.Truncate(msg.Text, limits.MaxPreview),
		ActorUserID: msg.Author,
	}
	if msg.MessageType == models.MessageTypeQuestion {
		ev.Type = models.EventNewQuestion
		ev.QuestionID = msg.MessageID
	} else {
		ev.Type = models.EventNewAnswer
		ev.QuestionID = msg.QuestionID
		ev.AnswerID = msg.MessageID
	}

	if err := h.Queue.Enqueue(ctx, ev); err != nil {
		h.Log.Warn("failed to enqueue push event",
			zap.String("event_id", ev.EventID),
			zap.String("circle_id", ev.CircleID),
			zap.Error(err))
	}
}
