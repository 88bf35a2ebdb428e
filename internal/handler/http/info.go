package http

import (
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/httputil"
)

// AppInfo identifies the running build on GET /.
type AppInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type appStatus struct {
	AppInfo
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func appInfoHandler(info AppInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteSuccess(w, http.StatusOK, info.Name+" API is running successfully", appStatus{
			AppInfo:   info,
			Status:    "running",
			Timestamp: time.Now().UTC(),
		})
	}
}

func notFoundHandler(l *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperrors.NotFound("route "+r.Method+" "+r.URL.Path+" not found"), l)
	}
}

func methodNotAllowedHandler(l *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, &apperrors.AppError{
			Code:    "METHOD_NOT_ALLOWED",
			Type:    apperrors.TypeBadRequest,
			Message: "method " + r.Method + " is not allowed on " + r.URL.Path,
			Status:  http.StatusMethodNotAllowed,
		}, l)
	}
}
