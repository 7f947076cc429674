package handler

import (
	"net/http"
	"socialconnect-server/internal/model/requestresponse"
	"socialconnect-server/internal/ports"
	"socialconnect-server/internal/util"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	ports.UserService
	ports.UploadService
}

func NewUserHandler(userService ports.UserService, uploadService ports.UploadService) *UserHandler {
	return &UserHandler{userService, uploadService}
}

// Me godoc
// @Summary Текущий пользователь
// @Description Данные пользователя, которому принадлежит access токен
// @Tags Users
// @Produce json
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.CurrentUserResponse{User: requestresponse.NewUserSummary(user)})
}

// GetUser godoc
// @Summary Получение пользователя администратором
// @Tags Admin
// @Produce json
// @Param user_id path string true "UUID пользователя"
// @Success 200 {object} requestresponse.AdminUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ только для ADMIN"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/admin/users/{user_id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.AdminUserResponse{User: user})
}

// ListUsers godoc
// @Summary Получение списка пользователей
// @Description Cursor-based пагинация по дате создания
// @Tags Admin
// @Produce json
// @Param cursor query string false "Курсор для пагинации"
// @Param limit query int false "Количество пользователей в списке" default(20) minimum(1) maximum(100)
// @Success 200 {object} requestresponse.ListUsersResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ только для ADMIN"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /api/admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			sendErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = l
	}

	users, nextCursor, err := h.UserService.ListUsers(r.Context(), cursor, limit)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ListUsersResponse{Users: users, NextCursor: nextCursor})
}

// ActivateUser godoc
// @Summary Активация пользователя
// @Tags Admin
// @Produce json
// @Param user_id path string true "UUID пользователя"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/admin/users/{user_id}/activate [post]
func (h *UserHandler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.ActivateUser(r.Context(), chi.URLParam(r, "user_id")); err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "User activated successfully"})
}

// DeactivateUser godoc
// @Summary Деактивация пользователя
// @Description Пользователь теряет возможность входа, все его refresh токены отзываются
// @Tags Admin
// @Produce json
// @Param user_id path string true "UUID пользователя"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Попытка деактивировать себя"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/admin/users/{user_id}/deactivate [post]
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	targetUUID := chi.URLParam(r, "user_id")
	if targetUUID == claims.UserID {
		sendErrorResponse(w, http.StatusBadRequest, "You cannot deactivate your own account")
		return
	}

	if err := h.UserService.DeactivateUser(r.Context(), targetUUID); err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.MessageResponse{Message: "User deactivated successfully"})
}

// PresignUpload godoc
// @Summary Pre-signed URL для загрузки изображения
// @Description JPEG или PNG до 2MB в бакеты avatars или posts. Файл загружается клиентом напрямую PUT запросом
// @Tags Upload
// @Accept json
// @Produce json
// @Param body body requestresponse.PresignUploadRequest true "Тело запроса"
// @Success 200 {object} requestresponse.PresignUploadResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/upload/presign [post]
func (h *UserHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.PresignUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	upload, err := h.UploadService.PresignImageUpload(r.Context(), claims.UserID, req.Bucket, req.ContentType, req.Size)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.PresignUploadResponse{
		UploadURL: upload.UploadURL,
		Key:       upload.Key,
		URL:       upload.URL,
	})
}
