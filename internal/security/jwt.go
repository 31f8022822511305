package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails signature, expiry or
// purpose checks. Expiry is an expected outcome callers must handle, not an
// internal failure.
var ErrInvalidToken = errors.New("token is expired or invalid")

// Token purposes. Every token carries one so a verification token can never
// be replayed as an access token and vice versa.
const (
	purposeAccess  = "access"
	purposeRefresh = "refresh"
	purposeVerify  = "verify-email"
	purposeOTP     = "otp"
	purposeReset   = "reset-password"
)

// SessionClaims identify a signed-in user.
type SessionClaims struct {
	UserID  uuid.UUID `json:"userId"`
	Purpose string    `json:"purpose"`
	jwt.RegisteredClaims
}

// EmailClaims prove control of an email inbox, not identity of a session.
type EmailClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// OTPClaims carry the one-time code embedded in the signed OTP cookie, plus
// the email the reset was requested for so the follow-up reset-authorized
// token can be bound to the same account.
type OTPClaims struct {
	OTP     string `json:"otp"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies all token kinds with a shared HS256 secret.
// The secret and TTLs are injected so tests can run with their own values.
type TokenManager struct {
	secret          []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	otpTTL          time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, accessTTL, refreshTTL, verificationTTL, otpTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:          []byte(secret),
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
		verificationTTL: verificationTTL,
		otpTTL:          otpTTL,
	}
}

func registeredClaims(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "tracknourish",
	}
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// GenerateAccessToken mints a 1h bearer token for regular API calls.
func (m *TokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return m.sign(SessionClaims{
		UserID:           userID,
		Purpose:          purposeAccess,
		RegisteredClaims: registeredClaims(time.Now(), m.accessTTL),
	})
}

// GenerateRefreshToken mints the long-lived token redeemed once per rotation.
func (m *TokenManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return m.sign(SessionClaims{
		UserID:           userID,
		Purpose:          purposeRefresh,
		RegisteredClaims: registeredClaims(time.Now(), m.refreshTTL),
	})
}

// GenerateTokenPair mints both session tokens.
func (m *TokenManager) GenerateTokenPair(userID uuid.UUID) (accessToken, refreshToken string, expiresIn int64, err error) {
	accessToken, err = m.GenerateAccessToken(userID)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = m.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresIn = int64(m.accessTTL.Seconds())

	return accessToken, refreshToken, expiresIn, nil
}

// ValidateAccessToken verifies an access token and returns the user ID.
func (m *TokenManager) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	return m.validateSession(tokenString, purposeAccess)
}

// ValidateRefreshToken verifies a refresh token and returns the user ID.
// Callers must still check the result against the stored rotation pointer.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	return m.validateSession(tokenString, purposeRefresh)
}

func (m *TokenManager) validateSession(tokenString, purpose string) (uuid.UUID, error) {
	var claims SessionClaims
	if err := m.parse(tokenString, &claims); err != nil {
		return uuid.Nil, err
	}
	if claims.Purpose != purpose || claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

// GenerateVerificationToken mints the short-lived token embedded in the
// verification link mailed at sign-up.
func (m *TokenManager) GenerateVerificationToken(email string) (string, error) {
	return m.sign(EmailClaims{
		Email:            email,
		Purpose:          purposeVerify,
		RegisteredClaims: registeredClaims(time.Now(), m.verificationTTL),
	})
}

// ValidateVerificationToken verifies a verification token and returns the
// email it was bound to.
func (m *TokenManager) ValidateVerificationToken(tokenString string) (string, error) {
	return m.validateEmail(tokenString, purposeVerify)
}

// GenerateOTPToken wraps a one-time code in the signed cookie payload. The
// code is never stored server-side outside this token.
func (m *TokenManager) GenerateOTPToken(otp, email string) (string, error) {
	return m.sign(OTPClaims{
		OTP:              otp,
		Email:            email,
		Purpose:          purposeOTP,
		RegisteredClaims: registeredClaims(time.Now(), m.otpTTL),
	})
}

// ValidateOTPToken verifies an OTP cookie and returns the embedded code and
// the email it was issued for.
func (m *TokenManager) ValidateOTPToken(tokenString string) (otp, email string, err error) {
	var claims OTPClaims
	if err := m.parse(tokenString, &claims); err != nil {
		return "", "", err
	}
	if claims.Purpose != purposeOTP || claims.OTP == "" {
		return "", "", ErrInvalidToken
	}
	return claims.OTP, claims.Email, nil
}

// GenerateResetToken mints the token proving the OTP step succeeded; the
// password overwrite only accepts requests carrying it.
func (m *TokenManager) GenerateResetToken(email string) (string, error) {
	return m.sign(EmailClaims{
		Email:            email,
		Purpose:          purposeReset,
		RegisteredClaims: registeredClaims(time.Now(), m.otpTTL),
	})
}

// ValidateResetToken verifies a reset-authorized token and returns its email.
func (m *TokenManager) ValidateResetToken(tokenString string) (string, error) {
	return m.validateEmail(tokenString, purposeReset)
}

func (m *TokenManager) validateEmail(tokenString, purpose string) (string, error) {
	var claims EmailClaims
	if err := m.parse(tokenString, &claims); err != nil {
		return "", err
	}
	if claims.Purpose != purpose || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

// AccessTokenTTL returns the access token TTL
func (m *TokenManager) AccessTokenTTL() time.Duration {
	return m.accessTTL
}

// RefreshTokenTTL returns the refresh token TTL
func (m *TokenManager) RefreshTokenTTL() time.Duration {
	return m.refreshTTL
}

// OTPTokenTTL returns the OTP and reset token TTL
func (m *TokenManager) OTPTokenTTL() time.Duration {
	return m.otpTTL
}
