package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/models"
)

func (s *MongoStore) InsertQuestion(ctx context.Context, q *models.ForumQuestion) error {
	if _, err := s.questions.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *MongoStore) QuestionByID(ctx context.Context, questionID string) (*models.ForumQuestion, error) {
	var q models.ForumQuestion
	err := s.questions.FindOne(ctx, bson.M{"question_id": questionID}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "Question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	return &q, nil
}

// Questions returns the whole board, newest first.
func (s *MongoStore) Questions(ctx context.Context) ([]models.ForumQuestion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creation_date", Value: -1}})
	cur, err := s.questions.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer cur.Close(ctx)

	var questions []models.ForumQuestion
	if err := cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

func (s *MongoStore) DeleteQuestion(ctx context.Context, questionID string) error {
	res, err := s.questions.DeleteOne(ctx, bson.M{"question_id": questionID})
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "Question not found")
	}
	return nil
}

func (s *MongoStore) InsertAnswer(ctx context.Context, a *models.ForumAnswer) error {
	if _, err := s.answers.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (s *MongoStore) AnswerByID(ctx context.Context, answerID string) (*models.ForumAnswer, error) {
	var a models.ForumAnswer
	err := s.answers.FindOne(ctx, bson.M{"answer_id": answerID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "Answer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find answer: %w", err)
	}
	return &a, nil
}

func (s *MongoStore) AnswersByQuestion(ctx context.Context, questionID string) ([]models.ForumAnswer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "creation_date", Value: 1}})
	cur, err := s.answers.Find(ctx, bson.M{"question_id": questionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer cur.Close(ctx)

	var answers []models.ForumAnswer
	if err := cur.All(ctx, &answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

func (s *MongoStore) DeleteAnswer(ctx context.Context, answerID string) error {
	res, err := s.answers.DeleteOne(ctx, bson.M{"answer_id": answerID})
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "Answer not found")
	}
	return nil
}
