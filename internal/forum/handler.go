package forum

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

// ForumStore defines the interface for forum persistence.
type ForumStore interface {
	InsertQuestion(ctx context.Context, q *models.ForumQuestion) error
	QuestionByID(ctx context.Context, questionID string) (*models.ForumQuestion, error)
	Questions(ctx context.Context) ([]models.ForumQuestion, error)
	DeleteQuestion(ctx context.Context, questionID string) error
	InsertAnswer(ctx context.Context, a *models.ForumAnswer) error
	AnswerByID(ctx context.Context, answerID string) (*models.ForumAnswer, error)
	AnswersByQuestion(ctx context.Context, questionID string) ([]models.ForumAnswer, error)
	DeleteAnswer(ctx context.Context, answerID string) error
}

// Handler holds forum HTTP handlers.
type Handler struct {
	board ForumStore
	names *NameResolver
}

func NewHandler(board ForumStore, names *NameResolver) *Handler {
	return &Handler{board: board, names: names}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CreateQuestion posts a question owned by the caller.
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.QuestionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}
	if req.QuestionHeader == "" || req.Question == "" {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "question_header and question are required"))
		return
	}

	questionID := req.QuestionID
	if questionID == "" {
		questionID = fmt.Sprintf("q_%s_%d", user.ID, time.Now().Unix())
	}

	question := &models.ForumQuestion{
		QuestionID:     questionID,
		UserID:         user.ID,
		QuestionHeader: req.QuestionHeader,
		Question:       req.Question,
		CreationDate:   time.Now(),
	}
	if err := h.board.InsertQuestion(r.Context(), question); err != nil {
		apperr.Write(w, err)
		return
	}

	created, err := h.board.QuestionByID(r.Context(), questionID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// GetQuestion returns a single question by its external id.
func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.board.QuestionByID(r.Context(), chi.URLParam(r, "question_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// ListQuestions returns the whole board, enriched with author names.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.board.Questions(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}

	enriched := make([]models.QuestionWithAuthor, 0, len(questions))
	for _, q := range questions {
		enriched = append(enriched, models.QuestionWithAuthor{
			ForumQuestion: q,
			Username:      h.names.Resolve(r.Context(), q.UserID),
		})
	}
	writeJSON(w, http.StatusOK, enriched)
}

// DeleteQuestion removes one of the caller's questions. Its answers are
// left in place.
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	question, err := h.board.QuestionByID(r.Context(), chi.URLParam(r, "question_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if question.UserID != user.ID {
		apperr.Write(w, apperr.New(apperr.Forbidden, "Not allowed to delete this question"))
		return
	}

	if err := h.board.DeleteQuestion(r.Context(), question.QuestionID); err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

// CreateAnswer posts an answer to an existing question.
func (h *Handler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.AnswerCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "invalid request body"))
		return
	}
	if req.QuestionID == "" || req.Answer == "" {
		apperr.Write(w, apperr.New(apperr.InvalidArgument, "question_id and answer are required"))
		return
	}

	// The referenced question must exist.
	if _, err := h.board.QuestionByID(r.Context(), req.QuestionID); err != nil {
		apperr.Write(w, err)
		return
	}

	answerID := req.AnswerID
	if answerID == "" {
		answerID = fmt.Sprintf("a_%s_%d", user.ID, time.Now().Unix())
	}

	answer := &models.ForumAnswer{
		AnswerID:     answerID,
		QuestionID:   req.QuestionID,
		UserID:       user.ID,
		Answer:       req.Answer,
		CreationDate: time.Now(),
	}
	if err := h.board.InsertAnswer(r.Context(), answer); err != nil {
		apperr.Write(w, err)
		return
	}

	created, err := h.board.AnswerByID(r.Context(), answerID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// GetAnswer returns a single answer by its external id.
func (h *Handler) GetAnswer(w http.ResponseWriter, r *http.Request) {
	answer, err := h.board.AnswerByID(r.Context(), chi.URLParam(r, "answer_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// ListAnswers returns a question's answers, enriched with author names.
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.board.AnswersByQuestion(r.Context(), chi.URLParam(r, "question_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}

	enriched := make([]models.AnswerWithAuthor, 0, len(answers))
	for _, a := range answers {
		enriched = append(enriched, models.AnswerWithAuthor{
			ForumAnswer: a,
			Username:    h.names.Resolve(r.Context(), a.UserID),
		})
	}
	writeJSON(w, http.StatusOK, enriched)
}

// DeleteAnswer removes one of the caller's answers.
func (h *Handler) DeleteAnswer(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	answer, err := h.board.AnswerByID(r.Context(), chi.URLParam(r, "answer_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if answer.UserID != user.ID {
		apperr.Write(w, apperr.New(apperr.Forbidden, "Not allowed to delete this answer"))
		return
	}

	if err := h.board.DeleteAnswer(r.Context(), answer.AnswerID); err != nil {
		apperr.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}
