package requestresponse

import "socialconnect-server/internal/model"

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email     string `json:"email" example:"jane@example.com"`
	Username  string `json:"username" example:"jane_doe"`
	Password  string `json:"password" example:"Passw0rdX"`
	FirstName string `json:"firstName" example:"Jane"`
	LastName  string `json:"lastName" example:"Doe"`
}

// RegisterResponse : успешный ответ регистрации
type RegisterResponse struct {
	Message string      `json:"message" example:"User registered successfully. Please check your email to verify your account."`
	User    UserSummary `json:"user"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" example:"jane_doe"`
	Password        string `json:"password" example:"Passw0rdX"`
}

// LoginResponse : ответ на успешную аутентификацию
type LoginResponse struct {
	Message      string      `json:"message" example:"Login successful"`
	AccessToken  string      `json:"accessToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string      `json:"refreshToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	User         UserSummary `json:"user"`
}

// RefreshTokenRequest : запрос на обновление пары токенов, также используется в logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// ChangePasswordRequest : смена пароля авторизованным пользователем
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"Passw0rdX"`
	NewPassword     string `json:"newPassword" example:"N3wPassw0rd"`
}

// EmailRequest : запросы, где нужен только email (сброс пароля, повторная верификация)
type EmailRequest struct {
	Email string `json:"email" example:"jane@example.com"`
}

// TokenRequest : проверка токена сброса или подтверждение email
type TokenRequest struct {
	Token string `json:"token" example:"MGI2YTFlMWMtNGIxZDoxNzAwMDAwMDAwMDAw"`
}

// PasswordResetConfirmRequest : погашение токена сброса пароля
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" example:"MGI2YTFlMWMtNGIxZDoxNzAwMDAwMDAwMDAw"`
	NewPassword string `json:"newPassword" example:"N3wPassw0rd"`
}

// CheckResetTokenResponse : состояние токена сброса
type CheckResetTokenResponse struct {
	Valid bool   `json:"valid" example:"true"`
	Used  bool   `json:"used" example:"false"`
	Error string `json:"error,omitempty"`
}

// MessageResponse : ответ, содержащий только сообщение
type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error        string `json:"error" example:"Invalid credentials"`
	ShouldLogout bool   `json:"shouldLogout,omitempty" example:"true"`
}

// UserSummary : публичное представление пользователя
type UserSummary struct {
	ID            string     `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Email         string     `json:"email" example:"jane@example.com"`
	Username      string     `json:"username" example:"jane_doe"`
	FirstName     string     `json:"firstName" example:"Jane"`
	LastName      string     `json:"lastName" example:"Doe"`
	Role          model.Role `json:"role" example:"USER"`
	EmailVerified bool       `json:"emailVerified" example:"true"`
	AvatarURL     string     `json:"avatarUrl,omitempty"`
}

func NewUserSummary(u *model.User) UserSummary {
	return UserSummary{
		ID:            u.UUID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		AvatarURL:     u.AvatarURL,
	}
}
