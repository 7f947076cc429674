package requestresponse

import "socialconnect-server/internal/model"

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	User UserSummary `json:"user"`
}

// AdminUserResponse : полные данные пользователя для администратора
type AdminUserResponse struct {
	User *model.User `json:"user"`
}

// ListUsersResponse : страница пользователей с курсором на следующую
type ListUsersResponse struct {
	Users      []*model.User `json:"users"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// PresignUploadRequest : запрос на загрузку изображения
type PresignUploadRequest struct {
	Bucket      string `json:"bucket" example:"avatars"`
	ContentType string `json:"contentType" example:"image/png"`
	Size        int64  `json:"size" example:"102400"`
}

// PresignUploadResponse : pre-signed URL и публичный адрес объекта
type PresignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key" example:"avatars/b6a1e1c4-4b1d-4f1e-8b29-1234567890ab-1700000000000.png"`
	URL       string `json:"url"`
}

// HealthResponse : состояние зависимостей сервиса
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"connected"`
	Redis    string `json:"redis" example:"connected"`
}
