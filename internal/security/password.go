package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost : стоимость bcrypt
const PasswordCost = 10

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// PasswordPolicyError : пароль не прошёл одно из правил политики
type PasswordPolicyError struct {
	Rule    string
	Message string
}

func (e *PasswordPolicyError) Error() string {
	return e.Message
}

// HashPassword : хеширует пароль с солью. Открытый пароль не логируется
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("не удалось создать хэш пароля: %w", err)
	}
	return string(hash), nil
}

// CheckPassword : сравнивает пароль с хешем. Некорректный хеш даёт false
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword : минимум 8 символов, заглавная и строчная буква, цифра
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return &PasswordPolicyError{Rule: "length", Message: "Password must be at least 8 characters long"}
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper {
		return &PasswordPolicyError{Rule: "uppercase", Message: "Password must contain at least one uppercase letter"}
	}
	if !hasLower {
		return &PasswordPolicyError{Rule: "lowercase", Message: "Password must contain at least one lowercase letter"}
	}
	if !hasDigit {
		return &PasswordPolicyError{Rule: "digit", Message: "Password must contain at least one number"}
	}

	return nil
}

func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidateUsername : 3-30 символов, латиница, цифры и подчёркивание
func ValidateUsername(username string) bool {
	return usernamePattern.MatchString(username)
}
