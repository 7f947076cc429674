package handler

import (
	"net/http"
	"socialconnect-server/internal/ratelimit"
	"socialconnect-server/internal/security"

	"github.com/go-chi/chi/v5"
)

// Routes : всё, что нужно для регистрации маршрутов /api
type Routes struct {
	Auth     *AuthenticationHandler
	Users    *UserHandler
	Health   *HealthHandler
	Verifier security.AccessTokenVerifier
	// Limiter : nil отключает ограничение частоты запросов
	Limiter ratelimit.Limiter
}

func (rt Routes) limit(scope string) func(http.Handler) http.Handler {
	if rt.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.PerIP(rt.Limiter, scope)
}

func (rt Routes) Register(r chi.Router) {
	rt.setupAuthRoutes(r)
	rt.setupUserRoutes(r)
	rt.setupAdminRoutes(r)

	if rt.Health != nil {
		r.Get("/api/health", rt.Health.Health)
	}
}

func (rt Routes) setupAuthRoutes(r chi.Router) {
	h := rt.Auth

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(rt.limit("login")).Post("/login", h.Login)
		r.Post("/token/refresh", h.RefreshToken)

		r.With(rt.limit("password-reset")).Post("/password-reset", h.RequestPasswordReset)
		r.Post("/check-reset-token", h.CheckResetToken)
		r.Post("/password-reset-confirm", h.ConfirmPasswordReset)

		r.Get("/verify-email", h.VerifyEmail)
		r.Post("/verify-email", h.VerifyEmail)
		r.With(rt.limit("resend-verification")).Post("/resend-verification", h.ResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(security.Authenticate(rt.Verifier))
			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

func (rt Routes) setupUserRoutes(r chi.Router) {
	h := rt.Users

	r.Group(func(r chi.Router) {
		r.Use(security.Authenticate(rt.Verifier))
		r.Get("/api/users/me", h.Me)
		r.Post("/api/upload/presign", h.PresignUpload)
	})
}

func (rt Routes) setupAdminRoutes(r chi.Router) {
	h := rt.Users

	r.Route("/api/admin/users", func(r chi.Router) {
		r.Use(security.RequireAdmin(rt.Verifier))
		r.Get("/", h.ListUsers)

		r.Route("/{user_id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Post("/activate", h.ActivateUser)
			r.Post("/deactivate", h.DeactivateUser)
		})
	})
}
