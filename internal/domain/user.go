package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account holder. RefreshToken holds the single refresh
// token currently accepted for this user; it is overwritten on every sign-in,
// refresh and email verification, and cleared on sign-out.
type User struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	HashedPassword  string    `json:"-"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	IsEmailVerified bool      `json:"is_email_verified"`
	RefreshToken    string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SignUpInput represents user registration data
type SignUpInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// SignInInput represents login credentials
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents the access/refresh tokens issued for a session
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
