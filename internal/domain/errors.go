package domain

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP statuses;
// anything not in this list is treated as internal and never shown to clients.
var (
	// ErrNotFound indicates no user exists for the given email or ID.
	ErrNotFound = errors.New("user not found")

	// ErrConflict indicates a uniqueness violation, e.g. sign-up with an
	// email that is already registered.
	ErrConflict = errors.New("email already registered")

	// ErrAlreadyVerified is returned when requesting verification for an
	// account whose email is already verified.
	ErrAlreadyVerified = errors.New("email already verified")

	// ErrEmailNotVerified blocks sign-in and password reset for accounts
	// that never completed email verification. Kept distinct from
	// ErrInvalidCredentials so clients can offer a resend action.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidCredentials indicates a password mismatch.
	ErrInvalidCredentials = errors.New("incorrect password")

	// ErrUnauthorized indicates a missing access or refresh token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a refresh token that verified but does not
	// match the stored rotation pointer, or whose subject no longer exists.
	ErrForbidden = errors.New("refresh token rejected")

	// ErrInvalidToken indicates a token that failed signature, expiry or
	// purpose checks. Expiry is an expected outcome, not an internal error.
	ErrInvalidToken = errors.New("token is expired or invalid")

	// ErrIncorrectOTP indicates a submitted code that does not match the
	// one embedded in the OTP cookie. Retryable.
	ErrIncorrectOTP = errors.New("otp is incorrect")

	// ErrDeliveryFailed indicates the email collaborator rejected a send.
	// Recoverable: the caller may retry the request.
	ErrDeliveryFailed = errors.New("failed to send email")

	// ErrTooManyRequests indicates the rate limiter rejected the request.
	ErrTooManyRequests = errors.New("too many requests")
)
