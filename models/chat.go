package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// ChatMessage is one turn of the case transcript, either the user's
// question or the assistant's grounded answer.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Sender    string             `bson:"sender" json:"sender"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type ChatRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	UserMessage string `json:"userMessage" binding:"required,min=1,max=4000"`
}

type ChatResponse struct {
	Response       string    `json:"response"`
	RelevantChunks []string  `json:"relevantChunks"`
	Timestamp      time.Time `json:"timestamp"`
}
