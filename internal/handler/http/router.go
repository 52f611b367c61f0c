package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marivaldojunior/ProductManagement/internal/auth"
	"github.com/marivaldojunior/ProductManagement/internal/service"
	"github.com/marivaldojunior/ProductManagement/pkg/health"
	"github.com/marivaldojunior/ProductManagement/pkg/middleware"
)

// NewRouter creates a chi router with all identity service routes registered.
func NewRouter(
	authService *service.AuthService,
	tokens *auth.TokenService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("identity"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Auth endpoints (public)
	authHandler := NewAuthHandler(authService, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.RefreshToken)
		r.Post("/logout", authHandler.Logout)
	})

	// Token validator that bridges to the internal token service.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		result := tokens.ValidateAccessToken(token)
		if !result.Valid {
			return nil, fmt.Errorf("invalid access token: %s", result.Reason)
		}
		return &middleware.Claims{
			UserID: result.UserID,
			Email:  result.Email,
		}, nil
	}

	// Authenticated auth endpoints (change password)
	r.Route("/api/v1/auth/change-password", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Post("/", authHandler.ChangePassword)
	})

	// User profile endpoints (auth required)
	userHandler := NewUserHandler(authService, logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.Me)
		r.Put("/me", userHandler.UpdateMe)
		r.Post("/me/deactivate", userHandler.Deactivate)
	})

	return r
}
