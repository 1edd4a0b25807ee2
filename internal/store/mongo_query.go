package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/models"
)

func (s *MongoStore) InsertQuery(ctx context.Context, q *models.Query) error {
	if _, err := s.queries.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("insert query: %w", err)
	}
	return nil
}

func (s *MongoStore) QueryByID(ctx context.Context, queryID string) (*models.Query, error) {
	var q models.Query
	err := s.queries.FindOne(ctx, bson.M{"query_id": queryID}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "Query not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find query: %w", err)
	}
	return &q, nil
}

func (s *MongoStore) QueriesByUser(ctx context.Context, userID string) ([]models.Query, error) {
	cur, err := s.queries.Find(ctx, bson.M{"user_id": userID}, findLimit(listLimit))
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer cur.Close(ctx)

	var queries []models.Query
	if err := cur.All(ctx, &queries); err != nil {
		return nil, fmt.Errorf("decode queries: %w", err)
	}
	return queries, nil
}

// UpdateQuery applies the non-nil fields of upd to the query document.
func (s *MongoStore) UpdateQuery(ctx context.Context, queryID string, upd *models.QueryUpdate) error {
	set := bson.M{}
	if upd.Response != nil {
		set["response"] = *upd.Response
	}
	if upd.UserRating != nil {
		set["user_rating"] = *upd.UserRating
	}
	if upd.UserFeedback != nil {
		set["user_feedback"] = *upd.UserFeedback
	}
	if len(set) == 0 {
		return apperr.New(apperr.InvalidArgument, "No update data provided")
	}

	res, err := s.queries.UpdateOne(ctx, bson.M{"query_id": queryID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update query: %w", err)
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.NotFound, "Query not found")
	}
	return nil
}

func (s *MongoStore) DeleteQuery(ctx context.Context, queryID string) error {
	res, err := s.queries.DeleteOne(ctx, bson.M{"query_id": queryID})
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "Query not found")
	}
	return nil
}
