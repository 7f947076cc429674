package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/security"
	"socialconnect-server/internal/service"
	"socialconnect-server/internal/util"
)

const msgInternal = "Internal server error"

// errorStatus : соответствие ошибок сервисного слоя HTTP статусам
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrRefreshTokenRejected, http.StatusUnauthorized},
	{service.ErrRefreshTokenInvalid, http.StatusUnauthorized},
	{service.ErrRefreshTokenExpired, http.StatusUnauthorized},
	{service.ErrAccountDeactivated, http.StatusForbidden},
	{service.ErrEmailNotVerified, http.StatusForbidden},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrUsernameTaken, http.StatusConflict},
	{service.ErrWrongCurrentPassword, http.StatusBadRequest},
	{service.ErrResetTokenInvalid, http.StatusBadRequest},
	{service.ErrResetTokenExpired, http.StatusBadRequest},
	{service.ErrResetTokenUsed, http.StatusBadRequest},
	{service.ErrVerificationTokenInvalid, http.StatusBadRequest},
	{service.ErrInvalidBucket, http.StatusBadRequest},
	{service.ErrImageTooLarge, http.StatusBadRequest},
	{service.ErrUnsupportedImage, http.StatusBadRequest},
	{service.ErrEmailDelivery, http.StatusInternalServerError},
}

// sendServiceError : 401 всегда с shouldLogout, неизвестные ошибки только в лог
func sendServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		sendErrorResponse(w, http.StatusBadRequest, vErr.Message)
		return
	}

	for _, e := range errorStatus {
		if !errors.Is(err, e.err) {
			continue
		}
		if e.status == http.StatusUnauthorized {
			util.HandleAuthError(w, e.err.Error())
			return
		}
		if e.status == http.StatusInternalServerError {
			log.Println(err)
		}
		sendErrorResponse(w, e.status, e.err.Error())
		return
	}

	log.Println(err)
	sendErrorResponse(w, http.StatusInternalServerError, msgInternal)
}

// decodeJSON обрабатывает декодирование JSON и возвращает ответ об ошибке, если декодирование не удалось.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return err
	}
	return nil
}

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}

// currentClaims : claims, положенные в контекст middleware. Без них ответ 401
func currentClaims(w http.ResponseWriter, r *http.Request) (*security.Claims, bool) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleAuthError(w, "Unauthorized - No token provided")
		return nil, false
	}
	return claims, true
}

// clientInfo : RemoteAddr уже исправлен middleware.RealIP, порт отбрасывается
func clientInfo(r *http.Request) model.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return model.ClientInfo{UserAgent: r.UserAgent(), IPAddress: ip}
}
