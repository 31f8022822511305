package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tracknourish/tracknourish/internal/domain"
	"github.com/tracknourish/tracknourish/internal/security"
)

// UserStore is the credential store consumed by the auth services. Lookups
// return (nil, nil) when no user exists. Create returns domain.ErrConflict
// on a duplicate email. UpdateRefreshToken swaps the stored refresh pointer
// only when it still equals current, reporting whether the swap happened.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) (bool, error)
}

// AuthService orchestrates sign-up, sign-in, sign-out and refresh rotation.
type AuthService struct {
	store        UserStore
	tokens       *security.TokenManager
	verification *VerificationService
}

// NewAuthService creates a new auth service
func NewAuthService(store UserStore, tokens *security.TokenManager, verification *VerificationService) *AuthService {
	return &AuthService{
		store:        store,
		tokens:       tokens,
		verification: verification,
	}
}

// SignUp creates a new unverified account and sends the verification email.
// No session is issued until the email is verified. When the verification
// email cannot be delivered the account still exists; the caller is expected
// to retry via resend.
func (s *AuthService) SignUp(ctx context.Context, input domain.SignUpInput) (*domain.User, error) {
	hashedPassword, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:             uuid.New(),
		Email:          input.Email,
		HashedPassword: hashedPassword,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.verification.sendTo(ctx, user); err != nil {
		return user, err
	}

	return user, nil
}

// SignIn verifies credentials and issues a session. Unverified accounts are
// rejected with domain.ErrEmailNotVerified, distinct from bad credentials, so
// clients can offer a resend action.
func (s *AuthService) SignIn(ctx context.Context, input domain.SignInInput) (*domain.TokenPair, error) {
	user, err := s.store.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	if !user.IsEmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	if !security.ComparePassword(input.Password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresIn, err := s.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	user.RefreshToken = refreshToken
	if err := s.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// SignOut clears the stored refresh pointer, so any refresh token the client
// still holds is rejected on the next rotation even before it expires.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	userID, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return domain.ErrUnauthorized
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}

	user.RefreshToken = ""
	if err := s.store.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// Refresh redeems a refresh token for a new access+refresh pair and rotates
// the stored pointer. The presented token must equal the stored pointer; a
// rotated-out token is rejected with domain.ErrForbidden even if its own
// expiry has not passed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrUnauthorized
	}

	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrForbidden
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrForbidden
	}

	if user.RefreshToken != refreshToken {
		return nil, domain.ErrForbidden
	}

	accessToken, newRefreshToken, expiresIn, err := s.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// Compare-and-swap so concurrent rotations of the same token have a
	// single winner; the loser sees a stale pointer and must sign in again.
	swapped, err := s.store.UpdateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !swapped {
		return nil, domain.ErrForbidden
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// GetUserByID retrieves a user by ID.
func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.store.GetByID(ctx, userID)
}
