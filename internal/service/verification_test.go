package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tracknourish/tracknourish/internal/domain"
	"github.com/tracknourish/tracknourish/internal/email"
	"github.com/tracknourish/tracknourish/internal/security"
)

func TestVerificationService_Request(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens()

	t.Run("unknown email", func(t *testing.T) {
		store := new(MockUserStore)
		svc := NewVerificationService(store, tokens, new(MockSender), "http://localhost:8080")

		store.On("GetByEmail", ctx, "nobody@b.com").Return(nil, nil)

		err := svc.Request(ctx, "nobody@b.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("already verified", func(t *testing.T) {
		store := new(MockUserStore)
		svc := NewVerificationService(store, tokens, new(MockSender), "http://localhost:8080")

		store.On("GetByEmail", ctx, "a@b.com").Return(newVerifiedUser(t, "a@b.com", "Abcd123!"), nil)

		err := svc.Request(ctx, "a@b.com")
		assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
	})

	t.Run("success mails a redeemable link", func(t *testing.T) {
		store := new(MockUserStore)
		sender := new(MockSender)
		svc := NewVerificationService(store, tokens, sender, "http://localhost:8080")

		user := newVerifiedUser(t, "a@b.com", "Abcd123!")
		user.IsEmailVerified = false
		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil)

		var sent email.Message
		sender.On("Send", ctx, mock.Anything).Run(func(args mock.Arguments) {
			sent = args.Get(1).(email.Message)
		}).Return(nil)

		err := svc.Request(ctx, "a@b.com")
		assert.NoError(t, err)
		assert.Equal(t, "a@b.com", sent.To)
		assert.Contains(t, sent.HTML, "/auth/verify-email?token=")

		// The mailed token must verify back to the same email.
		start := strings.Index(sent.HTML, "token=") + len("token=")
		end := strings.Index(sent.HTML[start:], `"`)
		gotEmail, err := tokens.ValidateVerificationToken(sent.HTML[start : start+end])
		assert.NoError(t, err)
		assert.Equal(t, "a@b.com", gotEmail)
	})

	t.Run("delivery failure", func(t *testing.T) {
		store := new(MockUserStore)
		sender := new(MockSender)
		svc := NewVerificationService(store, tokens, sender, "http://localhost:8080")

		user := newVerifiedUser(t, "a@b.com", "Abcd123!")
		user.IsEmailVerified = false
		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		sender.On("Send", ctx, mock.Anything).Return(assert.AnError)

		err := svc.Request(ctx, "a@b.com")
		assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	})
}

func TestVerificationService_Redeem(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokens()

	t.Run("invalid token", func(t *testing.T) {
		svc := NewVerificationService(new(MockUserStore), tokens, new(MockSender), "http://localhost:8080")

		_, _, err := svc.Redeem(ctx, "garbage")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := security.NewTokenManager("test-secret-key-with-32-chars!!", time.Hour, 15*24*time.Hour, -time.Minute, 10*time.Minute)
		svc := NewVerificationService(new(MockUserStore), expired, new(MockSender), "http://localhost:8080")

		token, err := expired.GenerateVerificationToken("a@b.com")
		assert.NoError(t, err)

		_, _, err = svc.Redeem(ctx, token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		store := new(MockUserStore)
		svc := NewVerificationService(store, tokens, new(MockSender), "http://localhost:8080")

		token, err := tokens.GenerateVerificationToken("gone@b.com")
		assert.NoError(t, err)

		store.On("GetByEmail", ctx, "gone@b.com").Return(nil, nil)

		_, _, err = svc.Redeem(ctx, token)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("success flips the flag and auto-logs-in", func(t *testing.T) {
		store := new(MockUserStore)
		svc := NewVerificationService(store, tokens, new(MockSender), "http://localhost:8080")

		user := &domain.User{ID: uuid.New(), Email: "a@b.com", FirstName: "Ada"}
		token, err := tokens.GenerateVerificationToken("a@b.com")
		assert.NoError(t, err)

		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		store.On("Save", ctx, user).Return(nil)

		gotUser, pair, err := svc.Redeem(ctx, token)
		assert.NoError(t, err)
		assert.True(t, gotUser.IsEmailVerified)
		assert.NotNil(t, pair)
		assert.Equal(t, pair.RefreshToken, gotUser.RefreshToken)

		userID, err := tokens.ValidateAccessToken(pair.AccessToken)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, userID)

		store.AssertExpectations(t)
	})

	t.Run("second redemption still succeeds", func(t *testing.T) {
		store := new(MockUserStore)
		svc := NewVerificationService(store, tokens, new(MockSender), "http://localhost:8080")

		user := &domain.User{ID: uuid.New(), Email: "a@b.com", IsEmailVerified: true}
		token, err := tokens.GenerateVerificationToken("a@b.com")
		assert.NoError(t, err)

		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		store.On("Save", ctx, user).Return(nil)

		gotUser, pair, err := svc.Redeem(ctx, token)
		assert.NoError(t, err)
		assert.True(t, gotUser.IsEmailVerified)
		assert.NotNil(t, pair, "a fresh session is still issued")
	})
}
