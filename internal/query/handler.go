package query

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/middleware"
	"github.com/socialsense/social-sense-backend/internal/models"
)

// QueryStore defines the interface for query persistence.
type QueryStore interface {
	QueryWriter
	QueryByID(ctx context.Context, queryID string) (*models.Query, error)
	QueriesByUser(ctx context.Context, userID string) ([]models.Query, error)
	UpdateQuery(ctx context.Context, queryID string, upd *models.QueryUpdate) error
}

// HistoryStore covers the history side of the deletion protocol.
type HistoryStore interface {
	HistoryLinker
	PullQueryRef(ctx context.Context, queryID string) error
}

// Handler holds query HTTP handlers.
type Handler struct {
	queries   QueryStore
	histories HistoryStore
	service   *Service
}

func NewHandler(queries QueryStore, histories HistoryStore, model ModelClient) *Handler {
	return &Handler{
		queries:   queries,
		histories: histories,
		service:   NewService(queries, histories, model),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Create runs the query-creation protocol for the calling user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.QueryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}
	if req.Query == "" || req.HistoryID == "" || req.ModelName == "" {
		apperr.Write(w, apperr.New(apperr.InvalidArgument,
			"Missing required fields: query, history_id, model_name are all required"))
		return
	}

	created, err := h.service.CreateQueryWithHistoryLink(r.Context(), user.ID, &req)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

// ownedQuery loads a query and enforces that the caller owns it.
func (h *Handler) ownedQuery(r *http.Request) (*models.Query, error) {
	user := middleware.UserFrom(r.Context())

	q, err := h.queries.QueryByID(r.Context(), chi.URLParam(r, "query_id"))
	if err != nil {
		return nil, err
	}
	if q.UserID != user.ID {
		return nil, apperr.New(apperr.Forbidden, "Not allowed to access this query")
	}
	return q, nil
}

// Get returns one of the caller's queries.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.ownedQuery(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Update applies a partial update (response, rating, feedback).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	q, err := h.ownedQuery(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var upd models.QueryUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}
	if err := h.queries.UpdateQuery(r.Context(), q.QueryID, &upd); err != nil {
		apperr.Write(w, err)
		return
	}

	updated, err := h.queries.QueryByID(r.Context(), q.QueryID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete runs the deletion protocol: deregister from the referencing history
// (best effort), then remove the query itself unconditionally.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	q, err := h.ownedQuery(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	if err := h.histories.PullQueryRef(r.Context(), q.QueryID); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := h.queries.DeleteQuery(r.Context(), q.QueryID); err != nil {
		apperr.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

// ListMine returns the caller's queries.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	queries, err := h.queries.QueriesByUser(r.Context(), user.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if queries == nil {
		queries = []models.Query{}
	}
	writeJSON(w, http.StatusOK, queries)
}
