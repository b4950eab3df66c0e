package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/auth"
	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/core"
	"github.com/OkunrinmetaWebDevelopment/AphiniTi-Profile-Answers/internal/store"
)

type APIHandler struct {
	service  *core.AnswerService
	verifier auth.Verifier
	logger   *zap.Logger
}

func NewAPIHandler(service *core.AnswerService, verifier auth.Verifier, logger *zap.Logger) *APIHandler {
	return &APIHandler{service: service, verifier: verifier, logger: logger}
}

// requireOwner enforces that the authenticated identity matches the resource
// owner named in the request. It runs before any store access.
func (h *APIHandler) requireOwner(w http.ResponseWriter, r *http.Request, targetUserID string) bool {
	authedID := userIDFromContext(r.Context())
	if targetUserID != authedID {
		h.logger.Warn("ownership mismatch",
			zap.String("authenticated_user_id", authedID),
			zap.String("target_user_id", targetUserID))
		writeError(w, http.StatusForbidden, "You can only access your own answers")
		return false
	}
	return true
}

type saveAnswersRequest struct {
	Answers map[int64]string `json:"answers"`
}

type answersResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Answers   map[int64]string `json:"answers"`
	SavedAt   *time.Time       `json:"saved_at,omitempty"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

// SaveAIAnswersHandler handles POST /api/ai-answers (flat schema).
func (h *APIHandler) SaveAIAnswersHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req saveAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	set, err := h.service.SaveAnswers(r.Context(), userID, req.Answers)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to save answers", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save AI answers")
		return
	}

	writeJSON(w, http.StatusOK, answersResponse{
		Success:   true,
		Message:   "AI answers saved successfully",
		Answers:   req.Answers,
		SavedAt:   &set.CreatedAt,
		UpdatedAt: &set.UpdatedAt,
	})
}

// GetAIAnswersHandler handles GET /api/ai-answers. A user with no saved
// answers gets an empty map and a 200, not an error.
func (h *APIHandler) GetAIAnswersHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	answers, set, err := h.service.GetAnswers(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get answers", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve AI answers")
		return
	}

	resp := answersResponse{Success: true, Message: "AI answers retrieved successfully", Answers: answers}
	if set == nil {
		resp.Message = "No AI answers found for user"
		resp.Answers = map[int64]string{}
	} else {
		resp.SavedAt = &set.CreatedAt
		resp.UpdatedAt = &set.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteAIAnswersHandler handles DELETE /api/ai-answers.
func (h *APIHandler) DeleteAIAnswersHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	if err := h.service.DeleteAnswers(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No AI answers found for user")
			return
		}
		h.logger.Error("failed to delete answers", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete AI answers")
		return
	}

	writeJSON(w, http.StatusOK, answersResponse{Success: true, Message: "AI answers deleted successfully"})
}

// UpdateAnswerHandler handles PUT /api/ai-answers/{questionID}?answer=...
// The answer rides in the query string, the user's answer document must
// already exist.
func (h *APIHandler) UpdateAnswerHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	questionID, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Question ID must be an integer")
		return
	}
	answer := r.URL.Query().Get("answer")

	updatedAt, err := h.service.UpdateAnswer(r.Context(), userID, questionID, answer)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "No AI answers found for user")
		default:
			h.logger.Error("failed to update answer", zap.String("user_id", userID),
				zap.Int64("question_id", questionID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to update answer")
		}
		return
	}

	writeJSON(w, http.StatusOK, answersResponse{
		Success:   true,
		Message:   "Answer for question " + strconv.FormatInt(questionID, 10) + " updated successfully",
		UpdatedAt: &updatedAt,
	})
}

type statsResponse struct {
	Success bool `json:"success"`
	*core.AnswerStats
}

// AnswerStatsHandler handles GET /api/ai-answers/stats. Always 200; a user
// with no answers gets zero-valued stats.
func (h *APIHandler) AnswerStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to compute stats", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get answer statistics")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Success: true, AnswerStats: stats})
}

type questionAnswerRequest struct {
	QuestionID   *int64 `json:"question_id"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
	UserID       string `json:"user_id"`
}

// SaveQuestionAnswerHandler handles POST /api/question-answer (sub-collection
// schema).
func (h *APIHandler) SaveQuestionAnswerHandler(w http.ResponseWriter, r *http.Request) {
	var req questionAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !h.requireOwner(w, r, req.UserID) {
		return
	}
	if req.QuestionID == nil {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	if err := h.service.SaveAnswer(r.Context(), req.UserID, *req.QuestionID, req.QuestionText, req.Answer); err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to save question answer", zap.String("user_id", req.UserID),
			zap.Int64("question_id", *req.QuestionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save answer")
		return
	}

	writeJSON(w, http.StatusOK, answersResponse{Success: true, Message: "Answer saved successfully"})
}

type bulkAnswersRequest struct {
	Answers []core.AnswerItem `json:"answers"`
	UserID  string            `json:"user_id"`
}

type bulkAnswersResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// BulkAnswersHandler handles POST /api/bulk-answers.
func (h *APIHandler) BulkAnswersHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !h.requireOwner(w, r, req.UserID) {
		return
	}

	count, err := h.service.SaveAnswersBulk(r.Context(), req.UserID, req.Answers)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to save bulk answers", zap.String("user_id", req.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save answers")
		return
	}

	writeJSON(w, http.StatusOK, bulkAnswersResponse{
		Success: true,
		Message: "Bulk answers saved successfully",
		Count:   count,
	})
}

type answerListResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Answers []*store.Answer `json:"answers"`
	Total   int             `json:"total"`
}

// ListUserAnswersHandler handles GET /api/user-answers/{userID}.
func (h *APIHandler) ListUserAnswersHandler(w http.ResponseWriter, r *http.Request) {
	targetUserID := chi.URLParam(r, "userID")
	if !h.requireOwner(w, r, targetUserID) {
		return
	}

	answers, err := h.service.ListAnswers(r.Context(), targetUserID)
	if err != nil {
		h.logger.Error("failed to list answers", zap.String("user_id", targetUserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve answers")
		return
	}
	if answers == nil {
		answers = []*store.Answer{}
	}

	writeJSON(w, http.StatusOK, answerListResponse{
		Success: true,
		Message: "Answers retrieved successfully",
		Answers: answers,
		Total:   len(answers),
	})
}

type singleAnswerResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Answer  *store.Answer `json:"answer"`
}

// GetQuestionAnswerHandler handles GET /api/question-answer/{userID}/{questionID}.
func (h *APIHandler) GetQuestionAnswerHandler(w http.ResponseWriter, r *http.Request) {
	targetUserID := chi.URLParam(r, "userID")
	if !h.requireOwner(w, r, targetUserID) {
		return
	}

	questionID, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Question ID must be an integer")
		return
	}

	answer, err := h.service.GetAnswer(r.Context(), targetUserID, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Answer not found")
			return
		}
		h.logger.Error("failed to get answer", zap.String("user_id", targetUserID),
			zap.Int64("question_id", questionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve answer")
		return
	}

	writeJSON(w, http.StatusOK, singleAnswerResponse{
		Success: true,
		Message: "Answer retrieved successfully",
		Answer:  answer,
	})
}
