package api_middleware

import (
	"context"
	"net/http"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/repository"
)

type AuthMiddleware struct {
	userRepo repository.UserRepository
}

func NewAuthMiddleware(userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")

		if apiKey == "" {
			logger.Warn("no API key provided")
			http.Error(w, "no API key provided", http.StatusUnauthorized)
			return
		}
		userDB, err := am.userRepo.GetByAPIKey(r.Context(), apiKey)
		if err != nil {
			logger.Warnf("rejected API key from %s: %v", r.RemoteAddr, err)
			http.Error(w, "invalid API key", http.StatusUnauthorized)
			return
		}

		user := userDB.ToUser()
		ctx := context.WithValue(r.Context(), commons.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(commons.UserContextKey).(model.User)
			if !ok {
				logger.Error("user not found in context or has unexpected type")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if user.Role != role {
				logger.Warnf("user %s does not have required role %s", user.Username, role)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
