package service_test

import (
	"context"
	"errors"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/repository"
	"socialconnect-server/internal/security"
	"socialconnect-server/internal/service"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func issuedReset(userID string, at time.Time) *model.IssuedToken {
	return &model.IssuedToken{UserID: userID, Purpose: model.PurposePasswordReset, IssuedAt: at}
}

func TestAuthenticationService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is non-committal", func(t *testing.T) {
		s, m := newAuthService()
		m.users.On("FindByEmailOrUsername", ctx, "ghost@x.com").Return(nil, repository.ErrNotFound)

		assert.NoError(t, s.RequestPasswordReset(ctx, "ghost@x.com"))
		m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("inactive user gets no email", func(t *testing.T) {
		s, m := newAuthService()
		user := activeUser(t, "Passw0rd1")
		user.IsActive = false
		m.users.On("FindByEmailOrUsername", ctx, "a@x.com").Return(user, nil)

		assert.NoError(t, s.RequestPasswordReset(ctx, "a@x.com"))
		m.registry.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("username does not receive a reset link", func(t *testing.T) {
		s, m := newAuthService()
		m.users.On("FindByEmailOrUsername", ctx, "alice").Return(activeUser(t, "Passw0rd1"), nil)

		assert.NoError(t, s.RequestPasswordReset(ctx, "alice"))
		m.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("registers token and sends link", func(t *testing.T) {
		s, m := newAuthService()
		token := security.EncodeResetToken("user-123", testNow)

		m.users.On("FindByEmailOrUsername", ctx, "A@x.com").Return(activeUser(t, "Passw0rd1"), nil)
		m.registry.On("Register", ctx, token, issuedReset("user-123", testNow), time.Hour).Return(nil)
		m.mailer.On("Send", ctx, mock.MatchedBy(func(msg model.EmailMessage) bool {
			return msg.Kind == model.EmailPasswordReset &&
				strings.HasPrefix(msg.Link, "http://app.test/auth/reset-password?token=")
		})).Return(nil)

		assert.NoError(t, s.RequestPasswordReset(ctx, "A@x.com"))
		m.assertExpectations(t)
	})

	t.Run("mail failure stays non-committal", func(t *testing.T) {
		s, m := newAuthService()
		m.users.On("FindByEmailOrUsername", ctx, "a@x.com").Return(activeUser(t, "Passw0rd1"), nil)
		m.registry.On("Register", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		m.mailer.On("Send", ctx, mock.Anything).Return(errors.New("broker down"))

		assert.NoError(t, s.RequestPasswordReset(ctx, "a@x.com"))
	})
}

func TestAuthenticationService_ConfirmPasswordReset(t *testing.T) {
	ctx := context.Background()
	issuedAt := testNow.Add(-10 * time.Minute)
	token := security.EncodeResetToken("user-123", issuedAt)
	tokenHash := security.HashToken(token)

	t.Run("stale token fails before the ledger", func(t *testing.T) {
		s, m := newAuthService()
		stale := security.EncodeResetToken("user-123", testNow.Add(-2*time.Hour))

		err := s.ConfirmPasswordReset(ctx, stale, "NewPass22")

		assert.ErrorIs(t, err, service.ErrResetTokenExpired)
		m.used.AssertNotCalled(t, "IsUsed", mock.Anything, mock.Anything)
		m.registry.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed token", func(t *testing.T) {
		s, _ := newAuthService()

		err := s.ConfirmPasswordReset(ctx, "%%%not-base64", "NewPass22")

		assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
	})

	t.Run("token never issued", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(nil, nil)

		err := s.ConfirmPasswordReset(ctx, token, "NewPass22")

		assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
		m.used.AssertNotCalled(t, "IsUsed", mock.Anything, mock.Anything)
	})

	t.Run("already used token fails before password policy", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", issuedAt), nil)
		m.used.On("IsUsed", ctx, tokenHash).Return(true, nil)

		// слабый пароль: ошибка журнала должна прийти раньше ошибки политики
		err := s.ConfirmPasswordReset(ctx, token, "weak")

		assert.ErrorIs(t, err, service.ErrResetTokenUsed)
		m.users.AssertNotCalled(t, "FindByUUID", mock.Anything, mock.Anything)
	})

	t.Run("weak password", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", issuedAt), nil)
		m.used.On("IsUsed", ctx, tokenHash).Return(false, nil)

		err := s.ConfirmPasswordReset(ctx, token, "weak")

		var vErr *service.ValidationError
		assert.ErrorAs(t, err, &vErr)
		m.used.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", issuedAt), nil)
		m.used.On("IsUsed", ctx, tokenHash).Return(false, nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(nil, repository.ErrNotFound)

		err := s.ConfirmPasswordReset(ctx, token, "NewPass22")

		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("concurrent redemption loses on the ledger", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", issuedAt), nil)
		m.used.On("IsUsed", ctx, tokenHash).Return(false, nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(activeUser(t, "Passw0rd1"), nil)
		m.used.On("MarkUsed", ctx, tokenHash, "a@x.com").Return(repository.ErrConflict)

		err := s.ConfirmPasswordReset(ctx, token, "NewPass22")

		assert.ErrorIs(t, err, service.ErrResetTokenUsed)
		m.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger failure burns nothing and changes nothing", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", issuedAt), nil)
		m.used.On("IsUsed", ctx, tokenHash).Return(false, nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(activeUser(t, "Passw0rd1"), nil)
		m.used.On("MarkUsed", ctx, tokenHash, "a@x.com").Return(errors.New("db error"))

		err := s.ConfirmPasswordReset(ctx, token, "NewPass22")

		assert.Error(t, err)
		m.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success records the token before the password", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", issuedAt), nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(activeUser(t, "Passw0rd1"), nil)
		mock.InOrder(
			m.used.On("IsUsed", ctx, tokenHash).Return(false, nil),
			m.used.On("MarkUsed", ctx, tokenHash, "a@x.com").Return(nil),
			m.users.On("UpdatePassword", ctx, "user-123", mock.MatchedBy(func(hash string) bool {
				return security.CheckPassword("NewPass22", hash)
			})).Return(nil),
			m.jwtRepo.On("RevokeAllForUser", ctx, "user-123").Return(int64(1), nil),
		)

		require.NoError(t, s.ConfirmPasswordReset(ctx, token, "NewPass22"))
		m.assertExpectations(t)
	})
}

func TestAuthenticationService_CheckResetToken(t *testing.T) {
	ctx := context.Background()
	token := security.EncodeResetToken("user-123", testNow.Add(-time.Minute))

	t.Run("valid", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", testNow), nil)
		m.used.On("IsUsed", ctx, security.HashToken(token)).Return(false, nil)

		status, err := s.CheckResetToken(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, &model.ResetTokenStatus{Valid: true, Used: false}, status)
	})

	t.Run("used", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-123", testNow), nil)
		m.used.On("IsUsed", ctx, security.HashToken(token)).Return(true, nil)

		status, err := s.CheckResetToken(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, &model.ResetTokenStatus{Valid: false, Used: true}, status)
	})

	t.Run("registered for another user", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposePasswordReset, token).Return(issuedReset("user-999", testNow), nil)

		status, err := s.CheckResetToken(ctx, token)

		assert.ErrorIs(t, err, service.ErrResetTokenInvalid)
		assert.Nil(t, status)
	})
}

func TestAuthenticationService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	token := security.EncodeResetToken("user-123", testNow.Add(-time.Hour))
	issued := &model.IssuedToken{UserID: "user-123", Purpose: model.PurposeEmailVerification}

	t.Run("verifies registered token", func(t *testing.T) {
		s, m := newAuthService()
		user := activeUser(t, "Passw0rd1")
		user.EmailVerified = false

		m.registry.On("Lookup", ctx, model.PurposeEmailVerification, token).Return(issued, nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(user, nil)
		m.users.On("SetEmailVerified", ctx, "user-123").Return(nil)

		already, err := s.VerifyEmail(ctx, token)

		require.NoError(t, err)
		assert.False(t, already)
		m.assertExpectations(t)
	})

	t.Run("already verified", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposeEmailVerification, token).Return(issued, nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(activeUser(t, "Passw0rd1"), nil)

		already, err := s.VerifyEmail(ctx, token)

		require.NoError(t, err)
		assert.True(t, already)
		m.users.AssertNotCalled(t, "SetEmailVerified", mock.Anything, mock.Anything)
	})

	t.Run("unregistered token", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposeEmailVerification, token).Return(nil, nil)

		_, err := s.VerifyEmail(ctx, token)

		assert.ErrorIs(t, err, service.ErrVerificationTokenInvalid)
		m.users.AssertNotCalled(t, "FindByUUID", mock.Anything, mock.Anything)
	})

	t.Run("unregistered token for verified user does not reveal status", func(t *testing.T) {
		s, m := newAuthService()
		m.registry.On("Lookup", ctx, model.PurposeEmailVerification, token).Return(nil, nil)
		m.users.On("FindByUUID", ctx, "user-123").Return(activeUser(t, "Passw0rd1"), nil).Maybe()

		already, err := s.VerifyEmail(ctx, token)

		assert.ErrorIs(t, err, service.ErrVerificationTokenInvalid)
		assert.False(t, already)
	})

	t.Run("registered for another user", func(t *testing.T) {
		s, m := newAuthService()
		other := &model.IssuedToken{UserID: "user-999", Purpose: model.PurposeEmailVerification}
		m.registry.On("Lookup", ctx, model.PurposeEmailVerification, token).Return(other, nil)

		_, err := s.VerifyEmail(ctx, token)

		assert.ErrorIs(t, err, service.ErrVerificationTokenInvalid)
	})

	t.Run("older than a day", func(t *testing.T) {
		s, _ := newAuthService()
		stale := security.EncodeResetToken("user-123", testNow.Add(-25*time.Hour))

		_, err := s.VerifyEmail(ctx, stale)

		assert.ErrorIs(t, err, service.ErrVerificationTokenInvalid)
	})
}

func TestAuthenticationService_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		s, m := newAuthService()
		m.users.On("FindByEmailOrUsername", ctx, "ghost@x.com").Return(nil, repository.ErrNotFound)

		already, err := s.ResendVerification(ctx, "ghost@x.com")

		assert.NoError(t, err)
		assert.False(t, already)
	})

	t.Run("already verified", func(t *testing.T) {
		s, m := newAuthService()
		m.users.On("FindByEmailOrUsername", ctx, "a@x.com").Return(activeUser(t, "Passw0rd1"), nil)

		already, err := s.ResendVerification(ctx, "a@x.com")

		assert.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("delivery failure is reported", func(t *testing.T) {
		s, m := newAuthService()
		user := activeUser(t, "Passw0rd1")
		user.EmailVerified = false
		m.users.On("FindByEmailOrUsername", ctx, "a@x.com").Return(user, nil)
		m.registry.On("Register", ctx, mock.Anything, mock.Anything, 24*time.Hour).Return(nil)
		m.mailer.On("Send", ctx, mock.Anything).Return(errors.New("broker down"))

		_, err := s.ResendVerification(ctx, "a@x.com")

		assert.ErrorIs(t, err, service.ErrEmailDelivery)
	})
}
