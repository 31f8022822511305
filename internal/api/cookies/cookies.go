// Package cookies centralizes the HTTP cookies the auth surface reads and
// writes, so handlers and middleware agree on names and attributes.
package cookies

import (
	"net/http"
	"time"

	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/domain"
)

// Cookie names. The OTP cookie keeps the name the web client already expects.
const (
	AccessToken  = "accessToken"
	RefreshToken = "refreshToken"
	OTP          = "verificationToken"
	Reset        = "resetToken"
)

func newCookie(cfg config.AuthConfig, name, value string, maxAge time.Duration, sameSite http.SameSite) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: sameSite,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge.Seconds())
	}
	return c
}

// SetSession writes the access and refresh cookies for a token pair.
// Lax so the session survives top-level navigation from the emailed links.
func SetSession(w http.ResponseWriter, cfg config.AuthConfig, pair *domain.TokenPair) {
	http.SetCookie(w, newCookie(cfg, AccessToken, pair.AccessToken, cfg.AccessTokenTTL, http.SameSiteLaxMode))
	http.SetCookie(w, newCookie(cfg, RefreshToken, pair.RefreshToken, cfg.RefreshCookieTTL, http.SameSiteLaxMode))
}

// ClearSession instructs the client to discard both session cookies.
func ClearSession(w http.ResponseWriter, cfg config.AuthConfig) {
	http.SetCookie(w, newCookie(cfg, AccessToken, "", 0, http.SameSiteLaxMode))
	http.SetCookie(w, newCookie(cfg, RefreshToken, "", 0, http.SameSiteLaxMode))
}

// SetOTP stores the signed OTP token for the password reset flow.
func SetOTP(w http.ResponseWriter, cfg config.AuthConfig, token string) {
	http.SetCookie(w, newCookie(cfg, OTP, token, cfg.OTPTokenTTL, http.SameSiteStrictMode))
}

func ClearOTP(w http.ResponseWriter, cfg config.AuthConfig) {
	http.SetCookie(w, newCookie(cfg, OTP, "", 0, http.SameSiteStrictMode))
}

// SetReset stores the short-lived proof that the OTP check passed.
func SetReset(w http.ResponseWriter, cfg config.AuthConfig, token string) {
	http.SetCookie(w, newCookie(cfg, Reset, token, cfg.OTPTokenTTL, http.SameSiteStrictMode))
}

func ClearReset(w http.ResponseWriter, cfg config.AuthConfig) {
	http.SetCookie(w, newCookie(cfg, Reset, "", 0, http.SameSiteStrictMode))
}
