package query

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/models"
)

// validModels is the fixed set of model names the service will invoke.
var validModels = map[string]bool{
	"emotiondetection":   true,
	"textSimplification": true,
	"socialNorm":         true,
}

// ModelClient is the external text-generation dependency.
type ModelClient interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// QueryWriter covers the query-collection writes the creation protocol needs.
type QueryWriter interface {
	InsertQuery(ctx context.Context, q *models.Query) error
	DeleteQuery(ctx context.Context, queryID string) error
}

// HistoryLinker registers a query id on its history.
type HistoryLinker interface {
	AppendQuery(ctx context.Context, historyID, queryID string) error
}

// Service owns the cross-collection query-creation protocol. MongoDB gives
// no transaction across the query and history collections, so the insert is
// compensated with a delete when the history link fails.
type Service struct {
	queries   QueryWriter
	histories HistoryLinker
	model     ModelClient
}

func NewService(queries QueryWriter, histories HistoryLinker, model ModelClient) *Service {
	return &Service{queries: queries, histories: histories, model: model}
}

// CreateQueryWithHistoryLink runs the creation protocol:
//
//  1. validate the model name
//  2. generate a query_id when the caller did not supply one
//  3. invoke the model
//  4. insert the query document
//  5. push the query_id onto the history and bump its counter
//  6. on a missing history, delete the query from step 4 and fail NotFound
//
// The visible effect is either both records updated or neither.
func (s *Service) CreateQueryWithHistoryLink(ctx context.Context, userID string, req *models.QueryCreateRequest) (*models.Query, error) {
	if !validModels[req.ModelName] {
		return nil, apperr.New(apperr.InvalidArgument,
			"Invalid model name. Choose from: emotiondetection, textSimplification, socialNorm")
	}

	queryID := req.QueryID
	if queryID == "" {
		queryID = fmt.Sprintf("qry_%s_%d", userID, time.Now().Unix())
	}

	response, err := s.model.Generate(ctx, req.ModelName, req.Query)
	if err != nil {
		return nil, apperr.Newf(apperr.Upstream,
			"Error processing query with model %s: %v", req.ModelName, err)
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperr.Newf(apperr.Upstream,
			"Model %s returned an empty response", req.ModelName)
	}

	q := &models.Query{
		QueryID:      queryID,
		UserID:       userID,
		Query:        req.Query,
		Response:     response,
		HistoryID:    req.HistoryID,
		CreationDate: time.Now(),
	}
	if err := s.queries.InsertQuery(ctx, q); err != nil {
		return nil, err
	}

	if err := s.histories.AppendQuery(ctx, req.HistoryID, queryID); err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			// Best-effort rollback; its own failure is logged, not escalated.
			if delErr := s.queries.DeleteQuery(ctx, queryID); delErr != nil {
				log.Printf("rollback of query %s failed: %v", queryID, delErr)
			}
			return nil, apperr.New(apperr.NotFound, "History not found")
		}
		return nil, err
	}

	return q, nil
}
