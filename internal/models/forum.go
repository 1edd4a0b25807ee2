package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ForumQuestion is a question posted to the community board.
type ForumQuestion struct {
	ID             primitive.ObjectID `json:"id"              bson:"_id,omitempty"`
	QuestionID     string             `json:"question_id"     bson:"question_id"`
	UserID         string             `json:"user_id"         bson:"user_id"`
	QuestionHeader string             `json:"question_header" bson:"question_header"`
	Question       string             `json:"question"        bson:"question"`
	CreationDate   time.Time          `json:"creation_date"   bson:"creation_date"`
}

// ForumAnswer is an answer to an existing forum question.
type ForumAnswer struct {
	ID           primitive.ObjectID `json:"id"            bson:"_id,omitempty"`
	AnswerID     string             `json:"answer_id"     bson:"answer_id"`
	QuestionID   string             `json:"question_id"   bson:"question_id"`
	UserID       string             `json:"user_id"       bson:"user_id"`
	Answer       string             `json:"answer"        bson:"answer"`
	CreationDate time.Time          `json:"creation_date" bson:"creation_date"`
}

// QuestionCreateRequest is the JSON body for POST /forum/question/.
type QuestionCreateRequest struct {
	QuestionID     string `json:"question_id"`
	QuestionHeader string `json:"question_header"`
	Question       string `json:"question"`
}

// AnswerCreateRequest is the JSON body for POST /forum/answer/.
type AnswerCreateRequest struct {
	AnswerID   string `json:"answer_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// QuestionWithAuthor is a question enriched with the author's display name
// for listing endpoints.
type QuestionWithAuthor struct {
	ForumQuestion
	Username string `json:"username"`
}

// AnswerWithAuthor is an answer enriched with the author's display name.
type AnswerWithAuthor struct {
	ForumAnswer
	Username string `json:"username"`
}
