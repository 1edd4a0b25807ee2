package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Query is one prompt/response exchange with the model service, logged
// permanently and referenced by exactly one History.
type Query struct {
	ID           primitive.ObjectID `json:"id"                      bson:"_id,omitempty"`
	QueryID      string             `json:"query_id"                bson:"query_id"`
	UserID       string             `json:"user_id"                 bson:"user_id"`
	Query        string             `json:"query"                   bson:"query"`
	Response     string             `json:"response"                bson:"response"`
	HistoryID    string             `json:"history_id"              bson:"history_id"`
	CreationDate time.Time          `json:"creation_date"           bson:"creation_date"`
	UserRating   *float64           `json:"user_rating,omitempty"   bson:"user_rating,omitempty"`
	UserFeedback *string            `json:"user_feedback,omitempty" bson:"user_feedback,omitempty"`
}

// QueryCreateRequest is the JSON body for POST /query/. QueryID is optional;
// one is generated when absent.
type QueryCreateRequest struct {
	QueryID   string `json:"query_id"`
	Query     string `json:"query"`
	HistoryID string `json:"history_id"`
	ModelName string `json:"model_name"`
}

// QueryUpdate is the JSON body for PUT /query/{query_id}. Nil fields are
// left untouched.
type QueryUpdate struct {
	Response     *string  `json:"response"`
	UserRating   *float64 `json:"user_rating"`
	UserFeedback *string  `json:"user_feedback"`
}
