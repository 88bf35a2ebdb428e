package http

import (
	"context"
	"log/slog"
	"mime"
	"net/http"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/httputil"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/middleware"
)

// ContentTypeJSON rejects requests that carry a body with a Content-Type
// other than application/json. Bodyless requests pass through.
func ContentTypeJSON(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "" && r.ContentLength != 0 {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					httputil.WriteError(w, r, &apperrors.AppError{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Type:    apperrors.TypeBadRequest,
						Message: "Content-Type must be application/json",
						Status:  http.StatusUnsupportedMediaType,
					}, l)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewTokenVerifier bridges the JWT manager to the Authorization Gate.
func NewTokenVerifier(jwt *auth.JWTManager) middleware.TokenVerifier {
	return func(_ context.Context, token string) (middleware.Identity, error) {
		id, err := jwt.VerifyAccessToken(token)
		if err != nil {
			return middleware.Identity{}, err
		}
		return middleware.Identity{UserID: id.InternID, Role: id.Role.String()}, nil
	}
}
