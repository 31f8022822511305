package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tracknourish/tracknourish/internal/api/handler"
	customMiddleware "github.com/tracknourish/tracknourish/internal/api/middleware"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/email"
	"github.com/tracknourish/tracknourish/internal/repository/redis"
	"github.com/tracknourish/tracknourish/internal/security"
	"github.com/tracknourish/tracknourish/internal/service"
)

// NewRouter creates and configures the HTTP router. The credential store and
// mail sender are constructed by the caller, which owns their lifecycles.
func NewRouter(cfg *config.Config, store service.UserStore, pinger handler.Pinger, redisClient *redis.Client, mail email.Sender) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	tokens := security.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
		cfg.Auth.VerificationTokenTTL,
		cfg.Auth.OTPTokenTTL,
	)

	// Initialize rate limiter
	rateLimiter := redis.NewRateLimiter(redisClient)

	// Initialize services
	verificationService := service.NewVerificationService(store, tokens, mail, cfg.Server.BaseURL)
	authService := service.NewAuthService(store, tokens, verificationService)
	resetService := service.NewResetService(store, tokens, mail)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Auth)
	verificationHandler := handler.NewVerificationHandler(verificationService, cfg.Auth)
	resetHandler := handler.NewResetHandler(resetService, cfg.Auth)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(tokens, authService, cfg.Auth)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(pinger))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RedirectIfAuthenticated)
				r.With(rateLimitMiddleware.Limit("sign-up", cfg.RateLimit.SignUp)).
					Post("/sign-up", authHandler.SignUp)
				r.With(rateLimitMiddleware.Limit("sign-in", cfg.RateLimit.SignIn)).
					Post("/sign-in", authHandler.SignIn)
			})

			r.Post("/sign-out", authHandler.SignOut)
			r.Post("/refresh", authHandler.Refresh)

			r.With(rateLimitMiddleware.Limit("resend-email", cfg.RateLimit.ResendMail)).
				Post("/resend-email", verificationHandler.Resend)
			r.Post("/verify-email", verificationHandler.Verify)

			r.With(rateLimitMiddleware.Limit("send-otp", cfg.RateLimit.SendOTP)).
				Post("/send-otp", resetHandler.SendOTP)
			r.Post("/verify-otp", resetHandler.VerifyOTP)
			r.Post("/reset-password", resetHandler.ResetPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", authHandler.Me)
		})
	})

	return r
}
