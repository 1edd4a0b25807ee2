package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/middleware"
	"github.com/socialsense/social-sense-backend/internal/models"
)

// HistoryStore defines the interface for history persistence.
type HistoryStore interface {
	InsertHistory(ctx context.Context, h *models.History) (string, error)
	HistoryByID(ctx context.Context, historyID string) (*models.History, error)
	HistoriesByUser(ctx context.Context, userID string) ([]models.History, error)
	AppendQuery(ctx context.Context, historyID, queryID string) error
	RemoveQuery(ctx context.Context, historyID, queryID string) error
	DeleteHistory(ctx context.Context, historyID string) error
}

// Handler holds history HTTP handlers.
type Handler struct {
	histories HistoryStore
}

func NewHandler(histories HistoryStore) *Handler {
	return &Handler{histories: histories}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Create starts an empty history for the calling user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.HistoryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}

	historyID := req.HistoryID
	if historyID == "" {
		historyID = fmt.Sprintf("hist_%s_%d", user.ID, time.Now().Unix())
	}

	entry := &models.History{
		HistoryID:     historyID,
		UserID:        user.ID,
		QuerySet:      []string{},
		QueryNumber:   0,
		AssistantName: req.AssistantName,
	}
	if _, err := h.histories.InsertHistory(r.Context(), entry); err != nil {
		apperr.Write(w, err)
		return
	}

	created, err := h.histories.HistoryByID(r.Context(), historyID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// ListMine returns the caller's histories.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	histories, err := h.histories.HistoriesByUser(r.Context(), user.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if histories == nil {
		histories = []models.History{}
	}
	writeJSON(w, http.StatusOK, histories)
}

// ownedHistory loads a history and enforces that the caller owns it.
func (h *Handler) ownedHistory(r *http.Request) (*models.History, error) {
	user := middleware.UserFrom(r.Context())

	entry, err := h.histories.HistoryByID(r.Context(), chi.URLParam(r, "history_id"))
	if err != nil {
		return nil, err
	}
	if entry.UserID != user.ID {
		return nil, apperr.New(apperr.Forbidden, "Not allowed to access this history")
	}
	return entry, nil
}

// Get returns one of the caller's histories.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ownedHistory(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// AddQuery pushes a query id onto the history's query_set.
func (h *Handler) AddQuery(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ownedHistory(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var ref models.HistoryQueryRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil || ref.QueryID == "" {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "query_id is required"))
		return
	}
	if err := h.histories.AppendQuery(r.Context(), entry.HistoryID, ref.QueryID); err != nil {
		apperr.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Query added"})
}

// RemoveQuery pulls a query id out of the history's query_set. The id must
// currently be a member.
func (h *Handler) RemoveQuery(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ownedHistory(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var ref models.HistoryQueryRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil || ref.QueryID == "" {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "query_id is required"))
		return
	}
	if err := h.histories.RemoveQuery(r.Context(), entry.HistoryID, ref.QueryID); err != nil {
		apperr.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Query '%s' removed from history '%s'", ref.QueryID, entry.HistoryID),
	})
}

// Delete removes one of the caller's histories. Logged queries stay behind;
// only the grouping disappears.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ownedHistory(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	if err := h.histories.DeleteHistory(r.Context(), entry.HistoryID); err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}
