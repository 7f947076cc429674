package security

import (
	"context"
	"fmt"
	"net/http"
	"socialconnect-server/internal/util"
	"strings"
)

const (
	msgNoToken      = "Unauthorized - No token provided"
	msgInvalidToken = "Unauthorized - Invalid or tampered token"
	msgAdminOnly    = "Forbidden - Admin access required"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AccessTokenVerifier : проверка bearer токена, реализуется JWTService
type AccessTokenVerifier interface {
	VerifyAccess(tokenString string) (*Claims, error)
}

// Authenticate : пропускает запрос дальше только с валидным access токеном
func Authenticate(verifier AccessTokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticateRequest(w, r, verifier)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin : Authenticate + проверка роли ADMIN. Отказ по роли не сбрасывает сессию
func RequireAdmin(verifier AccessTokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticateRequest(w, r, verifier)
			if !ok {
				return
			}
			if !claims.Role.IsAdmin() {
				util.HandleError(w, msgAdminOnly, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func authenticateRequest(w http.ResponseWriter, r *http.Request, verifier AccessTokenVerifier) (*Claims, bool) {
	token, ok := BearerToken(r)
	if !ok {
		util.HandleAuthError(w, msgNoToken)
		return nil, false
	}

	claims, err := verifier.VerifyAccess(token)
	if err != nil {
		util.HandleAuthError(w, msgInvalidToken)
		return nil, false
	}

	return claims, true
}

// BearerToken : значение заголовка Authorization после префикса "Bearer "
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}
