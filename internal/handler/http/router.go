package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/health"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/middleware"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/ratelimit"
)

// RouterConfig carries the HTTP-layer settings resolved from configuration.
type RouterConfig struct {
	Info              AppInfo
	ServiceName       string
	CORS              middleware.CORSConfig
	SecureCookies     bool
	TrustProxy        bool
	PprofEnabled      bool
	PprofAllowedCIDRs []string

	// AuthLimiter guards the public auth routes, keyed by client IP.
	AuthLimiter ratelimit.Limiter
	// AdminLimiter guards admin routes, keyed by user id.
	AdminLimiter ratelimit.Limiter
}

// Services groups the handlers' dependencies.
type Services struct {
	Auth    AuthService
	Interns InternService
	Verify  middleware.TokenVerifier
	Health  *health.Handler
}

// NewRouter creates a chi router with all intern service routes registered.
func NewRouter(svc Services, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))

	r.NotFound(notFoundHandler(logger))
	r.MethodNotAllowed(methodNotAllowedHandler(logger))

	r.Get("/", appInfoHandler(cfg.Info))

	// Health check endpoints
	r.Get("/health/live", svc.Health.LivenessHandler())
	r.Get("/health/ready", svc.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	authHandler := NewAuthHandler(svc.Auth, NewSessionCookies(cfg.SecureCookies), logger)
	internHandler := NewInternHandler(svc.Interns, logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON(logger))

		// Public, IP rate limited.
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(middleware.RateLimit(cfg.AuthLimiter, middleware.KeyByIP(cfg.TrustProxy), logger))
			}
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(svc.Verify, logger))
			r.Post("/logout", authHandler.Logout)
		})
	})

	r.Route("/api/v1/interns", func(r chi.Router) {
		r.Use(ContentTypeJSON(logger))
		r.Use(middleware.Authorize(svc.Verify, logger, domain.RoleAdmin.String()))
		if cfg.AdminLimiter != nil {
			r.Use(middleware.RateLimit(cfg.AdminLimiter, middleware.KeyByUserOrIP(cfg.TrustProxy), logger))
		}

		r.Post("/create-intern", internHandler.CreateIntern)
	})

	return r
}
