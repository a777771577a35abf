// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message subtypes.
const (
	MessageTypeQuestion = "question"
	MessageTypeAnswer   = "answer"
)

// Message is one entry in a circle's append-only timeline. The ordering
// key is (circle_id, created_at); MessageID is globally unique and
// generated when the client does not supply one.
//
// QuestionID is present only on answers and is expected to reference a
// prior question's MessageID in the same circle. The link is a soft
// convention relied on by clients, not enforced referentially.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	MessageID   string             `bson:"message_id" json:"messageId"`
	CircleID    string             `bson:"circle_id" json:"circleId"`
	Author      string             `bson:"author" json:"author"`
	AuthorName  string             `bson:"author_name,omitempty" json:"authorName,omitempty"`
	Text        string             `bson:"text" json:"text"`
	MessageType string             `bson:"message_type" json:"messageType"`
	QuestionID  string             `bson:"question_id,omitempty" json:"questionId,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
