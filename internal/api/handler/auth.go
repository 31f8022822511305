package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tracknourish/tracknourish/internal/api/cookies"
	"github.com/tracknourish/tracknourish/internal/api/middleware"
	"github.com/tracknourish/tracknourish/internal/api/response"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/domain"
	"github.com/tracknourish/tracknourish/internal/service"
)

var validate = validator.New()

func decodeAndValidate(r *http.Request, input any) (map[string]string, error) {
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		return nil, errors.New("invalid request body")
	}

	if err := validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string)
			for _, e := range validationErrors {
				switch e.Tag() {
				case "required":
					fields[e.Field()] = "field is required"
				case "email":
					fields[e.Field()] = "invalid email format"
				case "min":
					fields[e.Field()] = "must be at least " + e.Param() + " characters"
				case "max":
					fields[e.Field()] = "must be at most " + e.Param() + " characters"
				default:
					fields[e.Field()] = "validation failed on " + e.Tag()
				}
			}
			return fields, errors.New("validation failed")
		}
		return nil, err
	}

	return nil, nil
}

// AuthHandler handles the session-lifecycle endpoints
type AuthHandler struct {
	authService *service.AuthService
	cfg         config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// SignUp creates an unverified account and sends the verification email.
// No cookies are set; the session only exists after the email is verified.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input domain.SignUpInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.authService.SignUp(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"id":      user.ID,
		"email":   user.Email,
		"message": "verification email sent",
	})
}

// SignIn verifies credentials and sets the session cookies.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input domain.SignInInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	pair, err := h.authService.SignIn(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cookies.SetSession(w, h.cfg, pair)
	response.OK(w, map[string]any{
		"message":    "user signed in",
		"expires_in": pair.ExpiresIn,
	})
}

// SignOut invalidates the stored refresh pointer and clears both cookies.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(cookies.AccessToken)
	if err != nil {
		response.Unauthorized(w, "no access token found")
		return
	}

	if err := h.authService.SignOut(r.Context(), cookie.Value); err != nil {
		respondError(w, r, err)
		return
	}

	cookies.ClearSession(w, h.cfg)
	response.OK(w, map[string]any{"message": "user signed out"})
}

// Refresh rotates the token pair using the refresh cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(cookies.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "no refresh token found")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		// A rejected refresh is terminal for this session.
		if errors.Is(err, domain.ErrForbidden) {
			cookies.ClearSession(w, h.cfg)
		}
		respondError(w, r, err)
		return
	}

	cookies.SetSession(w, h.cfg, pair)
	response.OK(w, map[string]any{
		"message":    "tokens refreshed",
		"expires_in": pair.ExpiresIn,
	})
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if user == nil {
		response.Unauthorized(w, "user not found")
		return
	}

	response.OK(w, user)
}
