// Package email defines the delivery collaborator consumed by the auth
// services. The core only needs "send this message to this address" with a
// success/failure answer; transport specifics live in the resend subpackage.
package email

import (
	"context"
	"fmt"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationMessage builds the email carrying the account verification link.
func VerificationMessage(to, firstName, verificationLink string) Message {
	return Message{
		To:      to,
		Subject: "Tracknourish Email Verification",
		HTML: fmt.Sprintf(`<div>
  <p>Hi %s,</p>
  <p>Welcome to Tracknourish! Confirm your email address to activate your account:</p>
  <p><a href="%s">Verify my email</a></p>
  <p>This link expires in 10 minutes. If you did not sign up, you can ignore this email.</p>
</div>`, firstName, verificationLink),
	}
}

// OTPMessage builds the email carrying the password-reset code.
func OTPMessage(to, firstName, otp string) Message {
	return Message{
		To:      to,
		Subject: "Tracknourish OTP",
		HTML: fmt.Sprintf(`<div>
  <p>Hi %s,</p>
  <p>Your password reset code is:</p>
  <p><strong style="font-size:24px;letter-spacing:4px">%s</strong></p>
  <p>The code expires in 10 minutes. If you did not request a reset, you can ignore this email.</p>
</div>`, firstName, otp),
	}
}
