package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/models"
)

// ── fakes ────────────────────────────────────────────────

type fakeQueryStore struct {
	queries map[string]*models.Query
}

func newFakeQueryStore() *fakeQueryStore {
	return &fakeQueryStore{queries: map[string]*models.Query{}}
}

func (f *fakeQueryStore) InsertQuery(_ context.Context, q *models.Query) error {
	f.queries[q.QueryID] = q
	return nil
}

func (f *fakeQueryStore) DeleteQuery(_ context.Context, queryID string) error {
	if _, ok := f.queries[queryID]; !ok {
		return apperr.New(apperr.NotFound, "Query not found")
	}
	delete(f.queries, queryID)
	return nil
}

func (f *fakeQueryStore) QueryByID(_ context.Context, queryID string) (*models.Query, error) {
	q, ok := f.queries[queryID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Query not found")
	}
	return q, nil
}

func (f *fakeQueryStore) QueriesByUser(_ context.Context, userID string) ([]models.Query, error) {
	var out []models.Query
	for _, q := range f.queries {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQueryStore) UpdateQuery(_ context.Context, queryID string, upd *models.QueryUpdate) error {
	q, ok := f.queries[queryID]
	if !ok {
		return apperr.New(apperr.NotFound, "Query not found")
	}
	if upd.Response != nil {
		q.Response = *upd.Response
	}
	if upd.UserRating != nil {
		q.UserRating = upd.UserRating
	}
	if upd.UserFeedback != nil {
		q.UserFeedback = upd.UserFeedback
	}
	return nil
}

type fakeHistoryStore struct {
	histories map[string]*models.History // by history_id
	pulled    []string
}

func newFakeHistoryStore(ids ...string) *fakeHistoryStore {
	f := &fakeHistoryStore{histories: map[string]*models.History{}}
	for _, id := range ids {
		f.histories[id] = &models.History{HistoryID: id, QuerySet: []string{}}
	}
	return f
}

func (f *fakeHistoryStore) AppendQuery(_ context.Context, historyID, queryID string) error {
	h, ok := f.histories[historyID]
	if !ok {
		return apperr.New(apperr.NotFound, "History not found")
	}
	h.QuerySet = append(h.QuerySet, queryID)
	h.QueryNumber++
	return nil
}

func (f *fakeHistoryStore) PullQueryRef(_ context.Context, queryID string) error {
	f.pulled = append(f.pulled, queryID)
	for _, h := range f.histories {
		for i, id := range h.QuerySet {
			if id == queryID {
				h.QuerySet = append(h.QuerySet[:i], h.QuerySet[i+1:]...)
				h.QueryNumber--
				return nil
			}
		}
	}
	return nil
}

type fakeModel struct {
	response string
	err      error
	calls    int
}

func (f *fakeModel) Generate(_ context.Context, model, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

// ── tests ────────────────────────────────────────────────

func TestCreateQueryLinksHistory(t *testing.T) {
	queries := newFakeQueryStore()
	histories := newFakeHistoryStore("hist-1")
	model := &fakeModel{response: "It sounds like you are feeling anxious."}
	svc := NewService(queries, histories, model)

	created, err := svc.CreateQueryWithHistoryLink(context.Background(), "uid-1", &models.QueryCreateRequest{
		Query:     "I feel anxious",
		HistoryID: "hist-1",
		ModelName: "emotiondetection",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.QueryID, "qry_uid-1_"))
	assert.Equal(t, "uid-1", created.UserID)
	assert.Equal(t, "It sounds like you are feeling anxious.", created.Response)
	assert.False(t, created.CreationDate.IsZero())

	// Exactly one query record and one updated history.
	require.Len(t, queries.queries, 1)
	h := histories.histories["hist-1"]
	assert.Equal(t, []string{created.QueryID}, h.QuerySet)
	assert.Equal(t, 1, h.QueryNumber)
}

func TestCreateQueryKeepsCallerSuppliedID(t *testing.T) {
	queries := newFakeQueryStore()
	histories := newFakeHistoryStore("hist-1")
	svc := NewService(queries, histories, &fakeModel{response: "ok"})

	created, err := svc.CreateQueryWithHistoryLink(context.Background(), "uid-1", &models.QueryCreateRequest{
		QueryID:   "qry_custom",
		Query:     "hello",
		HistoryID: "hist-1",
		ModelName: "socialNorm",
	})
	require.NoError(t, err)
	assert.Equal(t, "qry_custom", created.QueryID)
}

func TestCreateQueryRejectsUnknownModel(t *testing.T) {
	queries := newFakeQueryStore()
	histories := newFakeHistoryStore("hist-1")
	model := &fakeModel{response: "ok"}
	svc := NewService(queries, histories, model)

	_, err := svc.CreateQueryWithHistoryLink(context.Background(), "uid-1", &models.QueryCreateRequest{
		Query:     "hello",
		HistoryID: "hist-1",
		ModelName: "gpt-everything",
	})
	assert.True(t, apperr.IsKind(err, apperr.InvalidArgument))
	assert.Zero(t, model.calls, "rejected model must never be invoked")
	assert.Empty(t, queries.queries)
}

func TestCreateQueryUpstreamFailure(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"model error", &fakeModel{err: errors.New("connection refused")}},
		{"empty response", &fakeModel{response: "   \n\t "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queries := newFakeQueryStore()
			histories := newFakeHistoryStore("hist-1")
			svc := NewService(queries, histories, tt.model)

			_, err := svc.CreateQueryWithHistoryLink(context.Background(), "uid-1", &models.QueryCreateRequest{
				Query:     "hello",
				HistoryID: "hist-1",
				ModelName: "textSimplification",
			})
			assert.True(t, apperr.IsKind(err, apperr.Upstream))
			assert.Empty(t, queries.queries, "nothing is persisted before the model answers")
		})
	}
}

func TestCreateQueryCompensatesMissingHistory(t *testing.T) {
	queries := newFakeQueryStore()
	histories := newFakeHistoryStore() // no histories at all
	svc := NewService(queries, histories, &fakeModel{response: "ok"})

	_, err := svc.CreateQueryWithHistoryLink(context.Background(), "uid-1", &models.QueryCreateRequest{
		Query:     "hello",
		HistoryID: "hist-missing",
		ModelName: "emotiondetection",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// The insert from step 4 was rolled back: no query record survives.
	assert.Empty(t, queries.queries)
}
