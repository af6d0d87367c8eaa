package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware returns a chi-compatible middleware enforcing bearer-token
// authentication with the given validator. When the validator is not
// configured the middleware is a no-op, so deployments without an
// identity provider keep working.
func Middleware(validator *JWTValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil || !validator.IsConfigured() {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Token validation failed", zap.Error(err))
				writeUnauthorized(w)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if sub, ok := claims["sub"].(string); ok {
				ctx = WithSubject(ctx, sub)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Message could not be processed"})
}
