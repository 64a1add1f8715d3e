package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a single legal case the assistant is scoped to,
// e.g. "Smith v. Doe", docket "1:23-cv-456".
type Project struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	DocketNumber string             `bson:"docket_number,omitempty" json:"docket_number,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

type CreateProjectRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=300"`
	DocketNumber string `json:"docket_number,omitempty"`
	Description  string `json:"description,omitempty"`
}
