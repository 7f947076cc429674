package authclient_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"socialconnect-server/pkg/authclient"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		withSession bool
		cleared     bool
	}{
		{"shouldLogout flag", http.StatusUnauthorized, `{"error":"Refresh token expired","shouldLogout":true}`, true, true},
		{"tampered message", http.StatusUnauthorized, `{"error":"Unauthorized - Invalid or tampered token"}`, true, true},
		{"non json 401", http.StatusUnauthorized, `unauthorized`, true, true},
		{"plain 401", http.StatusUnauthorized, `{"error":"Unauthorized"}`, true, false},
		{"forbidden", http.StatusForbidden, `{"error":"Forbidden - Admin access required"}`, true, false},
		{"ok", http.StatusOK, `{"message":"ok"}`, true, false},
		{"no session", http.StatusUnauthorized, `{"error":"Invalid credentials","shouldLogout":true}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			access := ""
			if tt.withSession {
				access = accessToken(t, time.Now().Add(time.Hour))
			}
			guard, session, rec := newGuard(access)
			client := &http.Client{Transport: &authclient.Transport{Guard: guard}}

			resp, err := client.Get(server.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			// 1. Тело ответа доступно вызывающему
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
			assert.Equal(t, tt.status, resp.StatusCode)

			// 2. Bearer добавлен только при наличии сессии
			if tt.withSession {
				assert.Equal(t, "Bearer "+access, gotAuth)
			} else {
				assert.Empty(t, gotAuth)
			}

			// 3. Сессия сброшена только по признаку недействительного токена
			if tt.cleared {
				assert.Equal(t, authclient.Tokens{}, session.Tokens())
				assert.Len(t, rec.reasons, 1)
			} else {
				assert.Empty(t, rec.reasons)
			}
		})
	}
}

func TestTransport_KeepsExplicitAuthorization(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	guard, _, _ := newGuard(accessToken(t, time.Now().Add(time.Hour)))
	client := &http.Client{Transport: &authclient.Transport{Guard: guard}}

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer explicit")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer explicit", gotAuth)
	assert.Equal(t, "Bearer explicit", req.Header.Get("Authorization"))
}
