package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// History groups the queries a user has run under one session/thread.
// QuerySet holds query_ids in insertion order; QueryNumber tracks its length.
type History struct {
	ID            primitive.ObjectID `json:"id"                       bson:"_id,omitempty"`
	HistoryID     string             `json:"history_id"               bson:"history_id"`
	UserID        string             `json:"user_id"                  bson:"user_id"`
	QuerySet      []string           `json:"query_set"                bson:"query_set"`
	QueryNumber   int                `json:"query_number"             bson:"query_number"`
	AssistantName string             `json:"assistant_name,omitempty" bson:"assistant_name,omitempty"`
}

// HistoryCreateRequest is the JSON body for POST /history/.
type HistoryCreateRequest struct {
	HistoryID     string `json:"history_id"`
	AssistantName string `json:"assistant_name"`
}

// HistoryQueryRef carries a query_id for add-query / remove-query.
type HistoryQueryRef struct {
	QueryID string `json:"query_id"`
}
