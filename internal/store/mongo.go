package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/models"
)

// listLimit caps per-user listing queries.
const listLimit = 100

// MongoStore handles history, query, and forum document CRUD in MongoDB.
type MongoStore struct {
	histories *mongo.Collection
	queries   *mongo.Collection
	questions *mongo.Collection
	answers   *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		histories: db.Collection("history"),
		queries:   db.Collection("query"),
		questions: db.Collection("forum-question"),
		answers:   db.Collection("forum-answer"),
	}
}

// ── Histories ────────────────────────────────────────────

func (s *MongoStore) InsertHistory(ctx context.Context, h *models.History) (string, error) {
	if h.QuerySet == nil {
		h.QuerySet = []string{}
	}
	res, err := s.histories.InsertOne(ctx, h)
	if err != nil {
		return "", fmt.Errorf("insert history: %w", err)
	}
	return objectIDHex(res.InsertedID), nil
}

func (s *MongoStore) HistoryByID(ctx context.Context, historyID string) (*models.History, error) {
	var h models.History
	err := s.histories.FindOne(ctx, bson.M{"history_id": historyID}).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "History not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	return &h, nil
}

func (s *MongoStore) HistoriesByUser(ctx context.Context, userID string) ([]models.History, error) {
	cur, err := s.histories.Find(ctx, bson.M{"user_id": userID}, findLimit(listLimit))
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	defer cur.Close(ctx)

	var histories []models.History
	if err := cur.All(ctx, &histories); err != nil {
		return nil, fmt.Errorf("decode histories: %w", err)
	}
	return histories, nil
}

// AppendQuery pushes queryID onto the history's query_set and bumps
// query_number, atomically within the one document.
func (s *MongoStore) AppendQuery(ctx context.Context, historyID, queryID string) error {
	res, err := s.histories.UpdateOne(ctx,
		bson.M{"history_id": historyID},
		bson.M{
			"$push": bson.M{"query_set": queryID},
			"$inc":  bson.M{"query_number": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("append query: %w", err)
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.NotFound, "History not found")
	}
	return nil
}

// RemoveQuery pulls queryID from the history's query_set. The filter requires
// membership, so the not-found response covers both a missing history and a
// query that was never a member; callers cannot tell the two apart.
func (s *MongoStore) RemoveQuery(ctx context.Context, historyID, queryID string) error {
	res, err := s.histories.UpdateOne(ctx,
		bson.M{"history_id": historyID, "query_set": queryID},
		bson.M{
			"$pull": bson.M{"query_set": queryID},
			"$inc":  bson.M{"query_number": -1},
		},
	)
	if err != nil {
		return fmt.Errorf("remove query: %w", err)
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.NotFound, "Query not found in history or history ID invalid")
	}
	return nil
}

// PullQueryRef removes queryID from whichever history references it, if any.
// Zero matches is not an error; query deletion proceeds regardless.
func (s *MongoStore) PullQueryRef(ctx context.Context, queryID string) error {
	_, err := s.histories.UpdateOne(ctx,
		bson.M{"query_set": queryID},
		bson.M{
			"$pull": bson.M{"query_set": queryID},
			"$inc":  bson.M{"query_number": -1},
		},
	)
	if err != nil {
		return fmt.Errorf("pull query ref: %w", err)
	}
	return nil
}

func objectIDHex(inserted interface{}) string {
	if oid, ok := inserted.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

func findLimit(n int64) *options.FindOptions {
	return options.Find().SetLimit(n)
}

func (s *MongoStore) DeleteHistory(ctx context.Context, historyID string) error {
	res, err := s.histories.DeleteOne(ctx, bson.M{"history_id": historyID})
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "History not found")
	}
	return nil
}
