package handler

import (
	"errors"
	"net/http"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/model/requestresponse"
	"socialconnect-server/internal/ports"
	"socialconnect-server/internal/service"
	"socialconnect-server/internal/util"
)

const (
	msgRegistered         = "User registered successfully. Please check your email to verify your account."
	msgLoginSuccessful    = "Login successful"
	msgLoggedOut          = "Logged out successfully"
	msgPasswordChanged    = "Password changed successfully"
	msgResetRequested     = "If an account with that email exists, a password reset link has been sent."
	msgPasswordReset      = "Password has been reset successfully"
	msgEmailVerified      = "Email verified successfully"
	msgAlreadyVerified    = "Email already verified"
	msgVerificationResent = "If an account with that email exists, a verification email has been sent."
)

type AuthenticationHandler struct {
	ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью USER и отправляет письмо для подтверждения email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.RegisterResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные" example({"error": "All fields are required"})
// @Failure 409 {object} requestresponse.ErrorResponse "Email или username заняты" example({"error": "Email already registered"})
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/register [post]
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.AuthenticationService.Register(r.Context(), model.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.RegisterResponse{
		Message: msgRegistered,
		User:    requestresponse.NewUserSummary(user),
	})
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Вход по email или username. Деактивированный или неподтверждённый аккаунт получает 403 без токенов
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверные учётные данные" example({"error": "Invalid credentials", "shouldLogout": true})
// @Failure 403 {object} requestresponse.ErrorResponse "Аккаунт деактивирован или email не подтверждён"
// @Failure 429 {object} requestresponse.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.EmailOrUsername == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, "Email/username and password are required")
		return
	}

	result, err := h.AuthenticationService.Login(r.Context(), req.EmailOrUsername, req.Password, clientInfo(r))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.LoginResponse{
		Message:      msgLoginSuccessful,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         requestresponse.NewUserSummary(result.User),
	})
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Ротация: переданный refresh токен отзывается, выдаётся новая пара
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} model.TokensPair "Новые access и refresh токены"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный, отозванный или истёкший токен" example({"error": "Invalid refresh token", "shouldLogout": true})
// @Failure 403 {object} requestresponse.ErrorResponse "Аккаунт деактивирован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/token/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	tokens, err := h.AuthenticationService.RefreshToken(r.Context(), req.RefreshToken, clientInfo(r))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, tokens)
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает один refresh токен текущего пользователя. Чужой токен не отзывается
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), claims.UserID, req.RefreshToken); err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgLoggedOut})
}

// ChangePassword godoc
// @Summary Смена пароля
// @Description Требует текущий пароль. После смены все сессии пользователя завершаются
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.ChangePasswordRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный текущий пароль или слабый новый"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/auth/change-password [post]
func (h *AuthenticationHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.AuthenticationService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgPasswordChanged})
}

// RequestPasswordReset godoc
// @Summary Запрос сброса пароля
// @Description Ответ одинаков для существующих и несуществующих email
// @Tags Password reset
// @Accept json
// @Produce json
// @Param body body requestresponse.EmailRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 429 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/password-reset [post]
func (h *AuthenticationHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.AuthenticationService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgResetRequested})
}

// CheckResetToken godoc
// @Summary Проверка токена сброса
// @Description Сообщает, действителен ли токен и был ли он уже использован
// @Tags Password reset
// @Accept json
// @Produce json
// @Param body body requestresponse.TokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.CheckResetTokenResponse
// @Failure 400 {object} requestresponse.CheckResetTokenResponse "Токен недействителен, истёк или использован"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/check-reset-token [post]
func (h *AuthenticationHandler) CheckResetToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Token == "" {
		sendErrorResponse(w, http.StatusBadRequest, "Token is required")
		return
	}

	status, err := h.AuthenticationService.CheckResetToken(r.Context(), req.Token)
	switch {
	case errors.Is(err, service.ErrResetTokenInvalid), errors.Is(err, service.ErrResetTokenExpired):
		util.WriteJSON(w, http.StatusBadRequest, requestresponse.CheckResetTokenResponse{Error: err.Error()})
	case err != nil:
		sendServiceError(w, err)
	case status.Used:
		util.WriteJSON(w, http.StatusBadRequest, requestresponse.CheckResetTokenResponse{
			Used:  true,
			Error: service.ErrResetTokenUsed.Error(),
		})
	default:
		util.WriteJSON(w, http.StatusOK, requestresponse.CheckResetTokenResponse{Valid: true})
	}
}

// ConfirmPasswordReset godoc
// @Summary Установка нового пароля по токену сброса
// @Description Токен одноразовый: повторное использование возвращает 400
// @Tags Password reset
// @Accept json
// @Produce json
// @Param body body requestresponse.PasswordResetConfirmRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse example({"error": "This reset link has already been used. Please request a new one."})
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/password-reset-confirm [post]
func (h *AuthenticationHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.PasswordResetConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.AuthenticationService.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: msgPasswordReset})
}

// VerifyEmail godoc
// @Summary Подтверждение email
// @Description Токен передаётся в теле (POST) или в query параметре token (GET)
// @Tags Email verification
// @Accept json
// @Produce json
// @Param body body requestresponse.TokenRequest false "Тело запроса"
// @Param token query string false "Токен подтверждения"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/verify-email [post]
// @Router /api/auth/verify-email [get]
func (h *AuthenticationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if r.Method == http.MethodPost {
		var req requestresponse.TokenRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		token = req.Token
	}

	alreadyVerified, err := h.AuthenticationService.VerifyEmail(r.Context(), token)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	message := msgEmailVerified
	if alreadyVerified {
		message = msgAlreadyVerified
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: message})
}

// ResendVerification godoc
// @Summary Повторная отправка письма подтверждения
// @Tags Email verification
// @Accept json
// @Produce json
// @Param body body requestresponse.EmailRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 429 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/resend-verification [post]
func (h *AuthenticationHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	alreadyVerified, err := h.AuthenticationService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	message := msgVerificationResent
	if alreadyVerified {
		message = msgAlreadyVerified
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: message})
}
