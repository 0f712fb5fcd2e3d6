package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/auth"
)

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

// AuthMiddleware validates the Bearer token and stores the authenticated
// user id in the request context. Handlers behind it receive an
// already-authenticated identity; the messaging core never sees tokens.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.Validate(strings.TrimSpace(header[len("Bearer "):]))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid authentication token"})
				return
			}
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid authentication token"})
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromCtx(ctx context.Context) uuid.UUID {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
