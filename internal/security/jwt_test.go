package security_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tracknourish/tracknourish/internal/security"
)

func newTestManager() *security.TokenManager {
	return security.NewTokenManager("test-secret-key-with-32-chars!!", time.Hour, 15*24*time.Hour, 10*time.Minute, 10*time.Minute)
}

func TestTokenManager_GenerateTokenPair(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()

	accessToken, refreshToken, expiresIn, err := manager.GenerateTokenPair(userID)
	if err != nil {
		t.Fatalf("failed to generate token pair: %v", err)
	}

	if accessToken == "" {
		t.Error("access token is empty")
	}

	if refreshToken == "" {
		t.Error("refresh token is empty")
	}

	if expiresIn != int64(time.Hour.Seconds()) {
		t.Errorf("expires in mismatch: got %d, want %d", expiresIn, int64(time.Hour.Seconds()))
	}

	gotID, err := manager.ValidateAccessToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}
	if gotID != userID {
		t.Errorf("user ID from access token mismatch: got %v, want %v", gotID, userID)
	}

	gotID, err = manager.ValidateRefreshToken(refreshToken)
	if err != nil {
		t.Fatalf("failed to validate refresh token: %v", err)
	}
	if gotID != userID {
		t.Errorf("user ID from refresh token mismatch: got %v, want %v", gotID, userID)
	}
}

func TestTokenManager_PurposeIsolation(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()

	accessToken, err := manager.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	// An access token must not be redeemable as a refresh token.
	if _, err := manager.ValidateRefreshToken(accessToken); err == nil {
		t.Error("expected error validating access token as refresh token, got nil")
	}

	verificationToken, err := manager.GenerateVerificationToken("test@example.com")
	if err != nil {
		t.Fatalf("failed to generate verification token: %v", err)
	}

	// A verification token must not pass as a reset token.
	if _, err := manager.ValidateResetToken(verificationToken); err == nil {
		t.Error("expected error validating verification token as reset token, got nil")
	}
}

func TestTokenManager_VerificationRoundTrip(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateVerificationToken("a@b.com")
	if err != nil {
		t.Fatalf("failed to generate verification token: %v", err)
	}

	email, err := manager.ValidateVerificationToken(token)
	if err != nil {
		t.Fatalf("failed to validate verification token: %v", err)
	}
	if email != "a@b.com" {
		t.Errorf("email mismatch: got %q, want %q", email, "a@b.com")
	}
}

func TestTokenManager_OTPRoundTrip(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateOTPToken("123456", "a@b.com")
	if err != nil {
		t.Fatalf("failed to generate otp token: %v", err)
	}

	otp, email, err := manager.ValidateOTPToken(token)
	if err != nil {
		t.Fatalf("failed to validate otp token: %v", err)
	}
	if otp != "123456" {
		t.Errorf("otp mismatch: got %q, want %q", otp, "123456")
	}
	if email != "a@b.com" {
		t.Errorf("email mismatch: got %q, want %q", email, "a@b.com")
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	manager := security.NewTokenManager("test-secret-key-with-32-chars!!", -time.Minute, -time.Minute, -time.Minute, -time.Minute)

	token, err := manager.GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}

	otpToken, err := manager.GenerateOTPToken("654321", "a@b.com")
	if err != nil {
		t.Fatalf("failed to generate otp token: %v", err)
	}

	if _, _, err := manager.ValidateOTPToken(otpToken); err == nil {
		t.Error("expected error for expired otp token, got nil")
	}
}

func TestTokenManager_InvalidToken(t *testing.T) {
	manager := newTestManager()

	// Invalid token format
	if _, err := manager.ValidateAccessToken("invalid-token"); err == nil {
		t.Error("expected error for invalid token, got nil")
	}

	// Empty token
	if _, err := manager.ValidateAccessToken(""); err == nil {
		t.Error("expected error for empty token, got nil")
	}

	// Token signed with different secret
	otherManager := security.NewTokenManager("different-secret-key-32-chars!!", time.Hour, 15*24*time.Hour, 10*time.Minute, 10*time.Minute)
	token, _ := otherManager.GenerateAccessToken(uuid.New())

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}
}

func TestTokenManager_TTLGetters(t *testing.T) {
	manager := security.NewTokenManager("test-secret-key-with-32-chars!!", 30*time.Minute, 10*24*time.Hour, 10*time.Minute, 5*time.Minute)

	if manager.AccessTokenTTL() != 30*time.Minute {
		t.Errorf("access token TTL mismatch: got %v, want %v", manager.AccessTokenTTL(), 30*time.Minute)
	}
	if manager.RefreshTokenTTL() != 10*24*time.Hour {
		t.Errorf("refresh token TTL mismatch: got %v, want %v", manager.RefreshTokenTTL(), 10*24*time.Hour)
	}
	if manager.OTPTokenTTL() != 5*time.Minute {
		t.Errorf("otp token TTL mismatch: got %v, want %v", manager.OTPTokenTTL(), 5*time.Minute)
	}
}
