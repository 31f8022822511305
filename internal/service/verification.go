package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tracknourish/tracknourish/internal/domain"
	"github.com/tracknourish/tracknourish/internal/email"
	"github.com/tracknourish/tracknourish/internal/security"
)

// VerificationService issues and redeems email-verification tokens.
type VerificationService struct {
	store   UserStore
	tokens  *security.TokenManager
	mail    email.Sender
	baseURL string
}

// NewVerificationService creates a new verification service
func NewVerificationService(store UserStore, tokens *security.TokenManager, mail email.Sender, baseURL string) *VerificationService {
	return &VerificationService{
		store:   store,
		tokens:  tokens,
		mail:    mail,
		baseURL: baseURL,
	}
}

// Request sends a fresh verification link to an existing, unverified account.
func (s *VerificationService) Request(ctx context.Context, emailAddr string) error {
	user, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if user.IsEmailVerified {
		return domain.ErrAlreadyVerified
	}

	return s.sendTo(ctx, user)
}

func (s *VerificationService) sendTo(ctx context.Context, user *domain.User) error {
	token, err := s.tokens.GenerateVerificationToken(user.Email)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	link := fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, url.QueryEscape(token))

	if err := s.mail.Send(ctx, email.VerificationMessage(user.Email, user.FirstName, link)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	return nil
}

// Redeem flips the account to verified and issues a session, so the emailed
// link logs the user in directly. Redeeming an already-verified account is a
// success and still yields a fresh session, making the link safe to click
// twice.
func (s *VerificationService) Redeem(ctx context.Context, token string) (*domain.User, *domain.TokenPair, error) {
	emailAddr, err := s.tokens.ValidateVerificationToken(token)
	if err != nil {
		return nil, nil, domain.ErrInvalidToken
	}

	user, err := s.store.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound
	}

	accessToken, refreshToken, expiresIn, err := s.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	user.IsEmailVerified = true
	user.RefreshToken = refreshToken
	if err := s.store.Save(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
