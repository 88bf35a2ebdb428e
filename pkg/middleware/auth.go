package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/httputil"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/logger"
)

type identityKey struct{}

// Identity is the authenticated caller resolved from a bearer access token.
type Identity struct {
	UserID string
	Role   string
}

// TokenVerifier verifies a bearer access token and returns the identity it
// asserts. It must return an error wrapping apperrors.ErrTokenExpired or
// apperrors.ErrTokenInvalid for bad tokens; any other error is treated as
// an internal failure.
type TokenVerifier func(ctx context.Context, token string) (Identity, error)

// Auth authenticates requests with an `Authorization: Bearer <token>` header.
// Expired and invalid tokens get the same 401 body and are only told apart
// in the logs. On success the Identity is stored in the request context.
func Auth(verify TokenVerifier, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("no authorization header provided"), l)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid authorization header format"), l)
				return
			}

			id, err := verify(ctx, token)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrTokenExpired):
				l.InfoContext(ctx, "access token expired", slog.String("path", r.URL.Path))
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), l)
				return
			case errors.Is(err, apperrors.ErrTokenInvalid):
				l.WarnContext(ctx, "invalid access token",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired token"), l)
				return
			default:
				httputil.WriteError(w, r, apperrors.Internal(err), l)
				return
			}

			ctx = context.WithValue(ctx, identityKey{}, id)
			ctx = logger.WithUserID(ctx, id.UserID)
			ctx = logger.WithRole(ctx, id.Role)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(
				slog.String("user_id", id.UserID),
				slog.String("role", id.Role),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated role is
// in roles. An empty list admits any authenticated identity. It must run
// after Auth; a request without an identity is rejected with 401.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
				return
			}
			if len(roleSet) > 0 {
				if _, allowed := roleSet[id.Role]; !allowed {
					httputil.WriteError(w, r, apperrors.Forbidden("forbidden - insufficient role"), nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize chains Auth and RequireRole for a protected route.
func Authorize(verify TokenVerifier, l *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	authn := Auth(verify, l)
	authz := RequireRole(roles...)
	return func(next http.Handler) http.Handler {
		return authn(authz(next))
	}
}

// IdentityFromContext returns the identity stored by Auth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

// RoleFromContext extracts the authenticated role from the request context.
func RoleFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// WithIdentity returns a context carrying id. Intended for tests of handlers
// mounted behind Auth.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}
