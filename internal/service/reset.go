package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/tracknourish/tracknourish/internal/domain"
	"github.com/tracknourish/tracknourish/internal/email"
	"github.com/tracknourish/tracknourish/internal/security"
)

// ResetService drives the OTP password-reset flow. The one-time code lives
// only inside the signed cookie handed back to the client; nothing is stored
// server-side between steps.
type ResetService struct {
	store  UserStore
	tokens *security.TokenManager
	mail   email.Sender
}

// NewResetService creates a new reset service
func NewResetService(store UserStore, tokens *security.TokenManager, mail email.Sender) *ResetService {
	return &ResetService{
		store:  store,
		tokens: tokens,
		mail:   mail,
	}
}

// SendOTP emails a 6-digit code to a verified account and returns the signed
// cookie payload embedding the same code. Unverified accounts cannot reset:
// a reset must not bootstrap an account that never proved inbox control.
func (s *ResetService) SendOTP(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", domain.ErrNotFound
	}
	if !user.IsEmailVerified {
		return "", domain.ErrEmailNotVerified
	}

	otp, err := security.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	token, err := s.tokens.GenerateOTPToken(otp, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp token: %w", err)
	}

	if err := s.mail.Send(ctx, email.OTPMessage(user.Email, user.FirstName, otp)); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	return token, nil
}

// VerifyOTP compares the submitted code against the one embedded in the
// signed cookie. On match it returns a short-lived reset-authorized token
// bound to the account email; ResetPassword only accepts requests carrying
// it, so client-side sequencing alone is never trusted.
func (s *ResetService) VerifyOTP(ctx context.Context, otpToken, submittedCode string) (string, error) {
	otp, emailAddr, err := s.tokens.ValidateOTPToken(otpToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(otp), []byte(submittedCode)) != 1 {
		return "", domain.ErrIncorrectOTP
	}

	resetToken, err := s.tokens.GenerateResetToken(emailAddr)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	return resetToken, nil
}

// ResetPassword overwrites the password for the account the reset token was
// issued to. The stored refresh pointer is cleared so outstanding sessions
// cannot survive a password change.
func (s *ResetService) ResetPassword(ctx context.Context, resetToken, emailAddr, newPassword string) error {
	authorizedEmail, err := s.tokens.ValidateResetToken(resetToken)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if authorizedEmail != emailAddr {
		return domain.ErrForbidden
	}

	user, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}

	hashedPassword, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.HashedPassword = hashedPassword
	user.RefreshToken = ""
	if err := s.store.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}
