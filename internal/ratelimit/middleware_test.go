package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	keys       []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.retryAfter, s.err
}

func serve(limiter Limiter) *httptest.ResponseRecorder {
	handler := PerIP(limiter, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPerIP_Limited(t *testing.T) {
	limiter := &stubLimiter{allowed: false, retryAfter: 1500 * time.Millisecond}

	rec := serve(limiter)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, rec.Body.String())
	assert.Equal(t, []string{"login:203.0.113.7"}, limiter.keys)
}

func TestPerIP_Allowed(t *testing.T) {
	rec := serve(&stubLimiter{allowed: true})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPerIP_FailOpen(t *testing.T) {
	rec := serve(&stubLimiter{err: errors.New("redis down")})
	assert.Equal(t, http.StatusOK, rec.Code)
}
