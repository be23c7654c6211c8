package middleware

import (
	"context"
	"net/http"
	"strings"

	"community/internal/apperrors"
	"community/internal/logger"
	helpers "community/internal/utils/helpers"

	"go.uber.org/zap"
)

// Authenticator: то, что умеет превратить bearer-токен в контекст с AuthContext.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (context.Context, error)
}

// JWTAuth проверяет заголовок Authorization один раз на входе запроса.
func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, apperrors.Unauthenticated("отсутствует access token"))
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			ctx, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный или просроченный токен", zap.Error(err))
				helpers.Error(w, err)
				return
			}

			logger.WithCtx(ctx).Debug("JWTAuth: токен валиден")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
