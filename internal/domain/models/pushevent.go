// internal/domain/models/pushevent.go
package models

// Push event types.
const (
	EventNewQuestion = "NEW_QUESTION"
	EventNewAnswer   = "NEW_ANSWER"
)

// PushEvent is the transient record queued between the message pipeline
// and the notification fan-out worker. It is never persisted; it exists
// only on the queue. EventID keys delivery deduplication under the
// queue's at-least-once semantics.
type PushEvent struct {
	EventID     string `json:"eventId"`
	Type        string `json:"type"`
	CircleID    string `json:"circleId"`
	CircleName  string `json:"circleName"`
	QuestionID  string `json:"questionId,omitempty"`
	AnswerID    string `json:"answerId,omitempty"`
	Preview     string `json:"preview"`
	ActorUserID string `json:"actorUserId"`
	Attempts    int    `json:"attempts,omitempty"`
}
