package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tracknourish/tracknourish/internal/api/cookies"
	"github.com/tracknourish/tracknourish/internal/api/response"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/security"
	"github.com/tracknourish/tracknourish/internal/service"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware gates protected routes on the session cookies. When the
// access cookie is missing or no longer verifies, it attempts a silent
// refresh with the refresh cookie before denying.
type AuthMiddleware struct {
	tokens   *security.TokenManager
	sessions *service.AuthService
	cfg      config.AuthConfig
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *security.TokenManager, sessions *service.AuthService, cfg config.AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, cfg: cfg}
}

// Authenticate allows the request through with the user ID in context, or
// denies with a redirect hint to the sign-in entry point.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(cookies.AccessToken); err == nil {
			if userID, err := m.tokens.ValidateAccessToken(cookie.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
				return
			}
		}

		// Access token absent or expired; try the refresh cookie once.
		refreshCookie, err := r.Cookie(cookies.RefreshToken)
		if err != nil {
			m.deny(w)
			return
		}

		pair, err := m.sessions.Refresh(r.Context(), refreshCookie.Value)
		if err != nil {
			cookies.ClearSession(w, m.cfg)
			m.deny(w)
			return
		}

		userID, err := m.tokens.ValidateAccessToken(pair.AccessToken)
		if err != nil {
			m.deny(w)
			return
		}

		// Hand the rotated pair to the client alongside the response.
		cookies.SetSession(w, m.cfg, pair)
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func (m *AuthMiddleware) deny(w http.ResponseWriter) {
	response.ErrorWithRedirect(w, http.StatusUnauthorized, "authentication required", m.cfg.SignInPath)
}

// RedirectIfAuthenticated keeps signed-in users away from public-only routes
// such as the sign-in and sign-up entry points.
func (m *AuthMiddleware) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(cookies.AccessToken); err == nil {
			if _, err := m.tokens.ValidateAccessToken(cookie.Value); err == nil {
				http.Redirect(w, r, m.cfg.LandingPath, http.StatusTemporaryRedirect)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func withUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID gets the user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
