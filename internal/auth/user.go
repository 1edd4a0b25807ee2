package auth

import (
	"encoding/json"
	"net/http"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/middleware"
	"github.com/socialsense/social-sense-backend/internal/models"
)

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFrom(r.Context()))
}

// UpdateUser applies a partial update to the caller's account. Username and
// email changes are re-checked for uniqueness against all other users.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}
	if req.Username == nil && req.Email == nil && req.Name == nil && req.Age == nil && req.Gender == nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "No valid update data provided"))
		return
	}

	if req.Username != nil {
		existing, err := h.users.GetUserByUsername(r.Context(), *req.Username)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		if existing != nil && existing.ID != user.ID {
			apperr.Write(w, apperr.New(apperr.AlreadyExists, "Username already taken"))
			return
		}
	}
	if req.Email != nil {
		existing, err := h.users.GetUserByEmail(r.Context(), *req.Email)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		if existing != nil && existing.ID != user.ID {
			apperr.Write(w, apperr.New(apperr.AlreadyExists, "Email already taken"))
			return
		}
	}

	updated, err := h.users.UpdateUser(r.Context(), user.ID, &req)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteUser removes the caller's account. Histories, queries, and forum
// posts are left in place; there is no cascade.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := h.users.DeleteUser(r.Context(), user.ID); err != nil {
		apperr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
