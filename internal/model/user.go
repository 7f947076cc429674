package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role : закрытое перечисление ролей пользователя
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole : регистронезависимый разбор роли, неизвестные значения отклоняются
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("неизвестная роль: %q", s)
	}
}

func (r Role) IsAdmin() bool {
	parsed, err := ParseRole(string(r))
	return err == nil && parsed == RoleAdmin
}

// UnmarshalJSON : роль из токена или тела запроса приводится к каноническому виду
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw == "" {
		*r = ""
		return nil
	}

	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan : то же приведение для значения из колонки role
func (r *Role) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*r = ""
		return nil
	default:
		return fmt.Errorf("неподдерживаемый тип роли: %T", src)
	}

	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	UUID          string     `db:"uuid" json:"id"`
	Email         string     `db:"email" json:"email"`
	Username      string     `db:"username" json:"username"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FirstName     string     `db:"first_name" json:"firstName"`
	LastName      string     `db:"last_name" json:"lastName"`
	Role          Role       `db:"role" json:"role"`
	IsActive      bool       `db:"is_active" json:"isActive"`
	EmailVerified bool       `db:"email_verified" json:"emailVerified"`
	LastLogin     *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	AvatarURL     string     `db:"avatar_url" json:"avatarUrl,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// Payload : набор claims, который попадает в токены пользователя
func (u *User) Payload() TokenPayload {
	return TokenPayload{
		UserID: u.UUID,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// RegisterInput : данные регистрации, прошедшие декодирование
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

type LoginResult struct {
	Tokens *TokensPair
	User   *User
}
