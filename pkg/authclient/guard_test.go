package authclient_test

import (
	"errors"
	"socialconnect-server/pkg/authclient"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("client-test"))
	require.NoError(t, err)
	return token
}

func accessToken(t *testing.T, exp time.Time) string {
	return signed(t, jwt.MapClaims{"userId": "user-1", "tokenType": "access", "exp": exp.Unix()})
}

type logoutRecorder struct {
	reasons []string
}

func (l *logoutRecorder) hook(reason string) {
	l.reasons = append(l.reasons, reason)
}

func newGuard(access string) (*authclient.Guard, *authclient.MemorySession, *logoutRecorder) {
	session := authclient.NewMemorySession()
	session.Store(authclient.Tokens{AccessToken: access, RefreshToken: "refresh"})

	rec := &logoutRecorder{}
	guard := authclient.NewGuard(session, rec.hook).WithClock(func() time.Time { return guardNow })
	return guard, session, rec
}

func TestGuard_PreCheck(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		valid bool
	}{
		{"valid", func(t *testing.T) string { return accessToken(t, guardNow.Add(time.Minute)) }, true},
		{"expires exactly now", func(t *testing.T) string { return accessToken(t, guardNow) }, true},
		{"expired", func(t *testing.T) string { return accessToken(t, guardNow.Add(-time.Second)) }, false},
		{"empty", func(*testing.T) string { return "" }, false},
		{"two segments", func(*testing.T) string { return "aaa.bbb" }, false},
		{"garbage payload", func(*testing.T) string { return "aaa.!!!.ccc" }, false},
		{"no exp", func(t *testing.T) string { return signed(t, jwt.MapClaims{"userId": "user-1"}) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, session, rec := newGuard(tt.token(t))

			err := guard.PreCheck()

			if tt.valid {
				assert.NoError(t, err)
				assert.Empty(t, rec.reasons)
				assert.NotEmpty(t, session.Tokens().AccessToken)
				return
			}
			assert.ErrorIs(t, err, authclient.ErrSessionInvalid)
			assert.Len(t, rec.reasons, 1)
			assert.Equal(t, authclient.Tokens{}, session.Tokens())
		})
	}
}

func TestGuard_PreCheckIsIdempotent(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		guard, session, _ := newGuard(accessToken(t, guardNow.Add(time.Hour)))
		before := session.Tokens()

		first := guard.PreCheck()
		second := guard.PreCheck()

		assert.NoError(t, first)
		assert.NoError(t, second)
		assert.Equal(t, before, session.Tokens())
	})

	t.Run("expired token", func(t *testing.T) {
		guard, _, _ := newGuard(accessToken(t, guardNow.Add(-time.Hour)))

		first := guard.PreCheck()
		second := guard.PreCheck()

		assert.True(t, errors.Is(first, authclient.ErrSessionInvalid))
		assert.True(t, errors.Is(second, authclient.ErrSessionInvalid))
	})
}

func TestGuard_NilHook(t *testing.T) {
	session := authclient.NewMemorySession()
	guard := authclient.NewGuard(session, nil)

	assert.ErrorIs(t, guard.PreCheck(), authclient.ErrSessionInvalid)
}
