package handler

import (
	"net/http"

	"github.com/tracknourish/tracknourish/internal/api/cookies"
	"github.com/tracknourish/tracknourish/internal/api/response"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/service"
)

// ResetHandler handles the OTP password-reset endpoints
type ResetHandler struct {
	reset *service.ResetService
	cfg   config.AuthConfig
}

// NewResetHandler creates a new reset handler
func NewResetHandler(reset *service.ResetService, cfg config.AuthConfig) *ResetHandler {
	return &ResetHandler{reset: reset, cfg: cfg}
}

type sendOTPInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SendOTP emails a 6-digit code and sets the signed OTP cookie. The cookie
// is the only place the code lives server-side of the inbox.
func (h *ResetHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var input sendOTPInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	token, err := h.reset.SendOTP(r.Context(), input.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cookies.SetOTP(w, h.cfg, token)
	response.OK(w, map[string]any{"message": "otp sent successfully"})
}

type verifyOTPInput struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyOTP checks the submitted code against the OTP cookie. On success it
// swaps the OTP cookie for a reset-authorized cookie consumed by ResetPassword.
func (h *ResetHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var input verifyOTPInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	cookie, err := r.Cookie(cookies.OTP)
	if err != nil {
		response.BadRequest(w, "verification token not found")
		return
	}

	resetToken, err := h.reset.VerifyOTP(r.Context(), cookie.Value, input.OTP)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cookies.ClearOTP(w, h.cfg)
	cookies.SetReset(w, h.cfg, resetToken)
	response.OK(w, map[string]any{"message": "otp verified"})
}

type resetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ResetPassword overwrites the password. It only works while the
// reset-authorized cookie from a successful VerifyOTP is still valid.
func (h *ResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input resetPasswordInput
	if fields, err := decodeAndValidate(r, &input); err != nil {
		if fields != nil {
			response.BadRequest(w, fields)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	cookie, err := r.Cookie(cookies.Reset)
	if err != nil {
		response.BadRequest(w, "reset not authorized; verify the otp first")
		return
	}

	if err := h.reset.ResetPassword(r.Context(), cookie.Value, input.Email, input.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	cookies.ClearReset(w, h.cfg)
	response.OK(w, map[string]any{"message": "password reset"})
}
