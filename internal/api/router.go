package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// Health check is public; everything under /api requires a bearer token.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiHandler.AuthMiddleware)

		// Flat (legacy) schema
		r.Post("/ai-answers", apiHandler.SaveAIAnswersHandler)
		r.Get("/ai-answers", apiHandler.GetAIAnswersHandler)
		r.Delete("/ai-answers", apiHandler.DeleteAIAnswersHandler)
		r.Get("/ai-answers/stats", apiHandler.AnswerStatsHandler)
		r.Put("/ai-answers/{questionID}", apiHandler.UpdateAnswerHandler)

		// Sub-collection schema
		r.Post("/question-answer", apiHandler.SaveQuestionAnswerHandler)
		r.Post("/bulk-answers", apiHandler.BulkAnswersHandler)
		r.Get("/user-answers/{userID}", apiHandler.ListUserAnswersHandler)
		r.Get("/question-answer/{userID}/{questionID}", apiHandler.GetQuestionAnswerHandler)
	})

	return r
}
