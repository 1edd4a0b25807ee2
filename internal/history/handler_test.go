package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/middleware"
	"github.com/socialsense/social-sense-backend/internal/models"
)

type fakeHistoryStore struct {
	histories map[string]*models.History
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{histories: map[string]*models.History{}}
}

func (f *fakeHistoryStore) InsertHistory(_ context.Context, h *models.History) (string, error) {
	f.histories[h.HistoryID] = h
	return "oid", nil
}

func (f *fakeHistoryStore) HistoryByID(_ context.Context, historyID string) (*models.History, error) {
	h, ok := f.histories[historyID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "History not found")
	}
	return h, nil
}

func (f *fakeHistoryStore) HistoriesByUser(_ context.Context, userID string) ([]models.History, error) {
	var out []models.History
	for _, h := range f.histories {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
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

func (f *fakeHistoryStore) RemoveQuery(_ context.Context, historyID, queryID string) error {
	h, ok := f.histories[historyID]
	if ok {
		for i, id := range h.QuerySet {
			if id == queryID {
				h.QuerySet = append(h.QuerySet[:i], h.QuerySet[i+1:]...)
				h.QueryNumber--
				return nil
			}
		}
	}
	// Missing history and non-member query_id are indistinguishable here,
	// mirroring the membership filter in the real store.
	return apperr.New(apperr.NotFound, "Query not found in history or history ID invalid")
}

func (f *fakeHistoryStore) DeleteHistory(_ context.Context, historyID string) error {
	if _, ok := f.histories[historyID]; !ok {
		return apperr.New(apperr.NotFound, "History not found")
	}
	delete(f.histories, historyID)
	return nil
}

func doRequest(h *Handler, method, path, body string, user *models.User,
	route string, fn http.HandlerFunc) *httptest.ResponseRecorder {

	r := chi.NewRouter()
	r.MethodFunc(method, route, fn)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req = req.WithContext(middleware.WithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateHistoryGeneratesID(t *testing.T) {
	store := newFakeHistoryStore()
	h := NewHandler(store)
	user := &models.User{ID: "uid-1"}

	rec := doRequest(h, http.MethodPost, "/", `{"assistant_name":"Sense"}`, user, "/", h.Create)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created models.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.HistoryID, "hist_uid-1_"))
	assert.Equal(t, "uid-1", created.UserID)
	assert.Empty(t, created.QuerySet)
	assert.Zero(t, created.QueryNumber)
	assert.Equal(t, "Sense", created.AssistantName)
}

func TestAddAndRemoveQuery(t *testing.T) {
	store := newFakeHistoryStore()
	h := NewHandler(store)
	user := &models.User{ID: "uid-1"}
	store.histories["hist-1"] = &models.History{HistoryID: "hist-1", UserID: "uid-1", QuerySet: []string{}}

	rec := doRequest(h, http.MethodPut, "/hist-1/add-query", `{"query_id":"qry-1"}`,
		user, "/{history_id}/add-query", h.AddQuery)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"qry-1"}, store.histories["hist-1"].QuerySet)
	assert.Equal(t, 1, store.histories["hist-1"].QueryNumber)

	rec = doRequest(h, http.MethodPut, "/hist-1/remove-query", `{"query_id":"qry-1"}`,
		user, "/{history_id}/remove-query", h.RemoveQuery)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.histories["hist-1"].QuerySet)
	assert.Zero(t, store.histories["hist-1"].QueryNumber)
}

func TestRemoveQueryNotMember(t *testing.T) {
	store := newFakeHistoryStore()
	h := NewHandler(store)
	user := &models.User{ID: "uid-1"}
	store.histories["hist-1"] = &models.History{HistoryID: "hist-1", UserID: "uid-1", QuerySet: []string{}}

	rec := doRequest(h, http.MethodPut, "/hist-1/remove-query", `{"query_id":"qry-ghost"}`,
		user, "/{history_id}/remove-query", h.RemoveQuery)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, store.histories["hist-1"].QueryNumber, "counter must not go negative")
}

func TestHistoryOwnershipEnforced(t *testing.T) {
	store := newFakeHistoryStore()
	h := NewHandler(store)
	store.histories["hist-1"] = &models.History{HistoryID: "hist-1", UserID: "uid-1", QuerySet: []string{}}

	intruder := &models.User{ID: "uid-2"}

	get := doRequest(h, http.MethodGet, "/hist-1", "", intruder, "/{history_id}", h.Get)
	assert.Equal(t, http.StatusForbidden, get.Code)

	add := doRequest(h, http.MethodPut, "/hist-1/add-query", `{"query_id":"qry-x"}`,
		intruder, "/{history_id}/add-query", h.AddQuery)
	assert.Equal(t, http.StatusForbidden, add.Code)

	del := doRequest(h, http.MethodDelete, "/hist-1", "", intruder, "/{history_id}", h.Delete)
	assert.Equal(t, http.StatusForbidden, del.Code)

	assert.Empty(t, store.histories["hist-1"].QuerySet, "no mutation on forbidden access")
}

func TestListMineFiltersByOwner(t *testing.T) {
	store := newFakeHistoryStore()
	h := NewHandler(store)
	store.histories["hist-1"] = &models.History{HistoryID: "hist-1", UserID: "uid-1"}
	store.histories["hist-2"] = &models.History{HistoryID: "hist-2", UserID: "uid-2"}

	rec := doRequest(h, http.MethodGet, "/user", "", &models.User{ID: "uid-1"}, "/user", h.ListMine)
	require.Equal(t, http.StatusOK, rec.Code)

	var histories []models.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &histories))
	require.Len(t, histories, 1)
	assert.Equal(t, "hist-1", histories[0].HistoryID)
}
