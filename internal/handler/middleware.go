package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/denkfield/msl-calllog-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	mslIDKey   contextKey = "mslID"
	managerKey contextKey = "manager"
)

// JWTAuthMiddleware validates Bearer tokens and injects the signed-in
// MSL's id and manager flag into the request context.
func JWTAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "authentication token not provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), mslIDKey, claims.Sub)
			ctx = context.WithValue(ctx, managerKey, claims.Manager)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireManager rejects requests whose token does not carry the manager
// role. Must run after JWTAuthMiddleware.
func RequireManager(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsManagerFromContext(r.Context()) {
				logger.Warn("forbidden: manager role required",
					zap.String("path", r.URL.Path),
					zap.String("msl_id", MSLIDFromContext(r.Context())),
				)
				writeError(w, http.StatusForbidden, "manager role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MSLIDFromContext extracts the authenticated MSL id from context.
func MSLIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(mslIDKey).(string)
	return v
}

// IsManagerFromContext reports whether the authenticated MSL is a manager.
func IsManagerFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(managerKey).(bool)
	return v
}

// canAccessMSL reports whether the caller may read data owned by the
// given MSL: their own data always, anyone's when the caller is a manager.
func canAccessMSL(ctx context.Context, mslID string) bool {
	return MSLIDFromContext(ctx) == mslID || IsManagerFromContext(ctx)
}
