package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type userIDCtxKey struct{}

// AuthMiddleware resolves the bearer token into a user id and stashes it in
// the request context. Every protected route runs behind it.
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			writeError(w, http.StatusUnauthorized, "Bearer token is required")
			return
		}

		userID, err := h.verifier.Verify(r.Context(), token)
		if err != nil {
			// Each failure kind is already logged by the verifier; clients
			// get the same 401 regardless.
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		h.logger.Debug("authenticated request", zap.String("user_id", userID))
		ctx := context.WithValue(r.Context(), userIDCtxKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDCtxKey{}).(string)
	return id
}
