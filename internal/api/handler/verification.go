package handler

import (
	"net/http"

	"github.com/tracknourish/tracknourish/internal/api/cookies"
	"github.com/tracknourish/tracknourish/internal/api/response"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/service"
)

// VerificationHandler handles the email-verification endpoints
type VerificationHandler struct {
	verification *service.VerificationService
	cfg          config.AuthConfig
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verification *service.VerificationService, cfg config.AuthConfig) *VerificationHandler {
	return &VerificationHandler{verification: verification, cfg: cfg}
}

type resendInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Resend mails a fresh verification link to an unverified account.
func (h *VerificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var input resendInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.verification.Request(r.Context(), input.Email); err != nil {
		respondError(w, r, err)
		return
	}

	response.OK(w, map[string]any{"message": "verification email sent"})
}

type verifyInput struct {
	Token string `json:"token" validate:"required"`
}

// Verify redeems an emailed verification token and logs the user in.
// Redeeming a link for an already-verified account succeeds and still
// issues a session.
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var input verifyInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	user, pair, err := h.verification.Redeem(r.Context(), input.Token)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cookies.SetSession(w, h.cfg, pair)
	response.OK(w, map[string]any{
		"message": "email verified",
		"email":   user.Email,
	})
}
