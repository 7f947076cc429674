package model

import "time"

// RefreshToken : запись о выданном refresh токене. Хранится только хеш значения
type RefreshToken struct {
	UUID      string    `db:"uuid"`
	UserUUID  string    `db:"user_uuid"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	IsRevoked bool      `db:"is_revoked"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
	CreatedAt time.Time `db:"created_at"`
}

// UsedToken : запись журнала использованных токенов сброса пароля
type UsedToken struct {
	TokenHash string    `db:"token_hash"`
	UserEmail string    `db:"user_email"`
	CreatedAt time.Time `db:"created_at"`
}

type TokenPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (JWT, для получения новой пары)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refreshToken"`
}

// ClientInfo : сведения о клиенте, сохраняемые вместе с refresh токеном
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type TokenPurpose string

const (
	PurposePasswordReset     TokenPurpose = "reset"
	PurposeEmailVerification TokenPurpose = "verify"
)

// IssuedToken : запись реестра выданных self-encoded токенов
type IssuedToken struct {
	UserID   string       `json:"userId"`
	Purpose  TokenPurpose `json:"purpose"`
	IssuedAt time.Time    `json:"issuedAt"`
}

// ResetTokenStatus : ответ проверки токена сброса до отправки нового пароля
type ResetTokenStatus struct {
	Valid bool
	Used  bool
}
