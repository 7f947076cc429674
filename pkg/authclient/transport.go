package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type anonymousKey struct{}

// withoutSession : запрос уходит без токена сессии, его 401 сессию не сбрасывает
func withoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	anonymous, _ := ctx.Value(anonymousKey{}).(bool)
	return anonymous
}

type errorBody struct {
	Error        string `json:"error"`
	ShouldLogout bool   `json:"shouldLogout"`
}

// Transport : добавляет Bearer токен сессии и сбрасывает сессию, если сервер
// ответил 401 с признаком недействительного токена. Ответ возвращается вызывающему как есть
type Transport struct {
	Base  http.RoundTripper
	Guard *Guard
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isAnonymous(req.Context()) {
		return t.base().RoundTrip(req)
	}

	access := t.Guard.session.Tokens().AccessToken
	if access != "" && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || access == "" {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		t.Guard.logout("unreadable 401 response")
		return resp, nil
	}

	if rejectsSession(body) {
		t.Guard.logout("server rejected session")
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

// rejectsSession : тело 401 без JSON тоже считается отказом
func rejectsSession(body []byte) bool {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return true
	}
	return e.ShouldLogout || strings.Contains(e.Error, "Invalid") || strings.Contains(e.Error, "tampered")
}
