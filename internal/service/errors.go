package service

import "errors"

// Тексты ошибок уходят клиенту как есть
var (
	ErrInvalidCredentials   = errors.New("Invalid credentials")
	ErrAccountDeactivated   = errors.New("Account is deactivated")
	ErrEmailNotVerified     = errors.New("Please verify your email before logging in. Check your inbox for verification link.")
	ErrEmailTaken           = errors.New("Email already registered")
	ErrUsernameTaken        = errors.New("Username already taken")
	ErrUserNotFound         = errors.New("User not found")
	ErrWrongCurrentPassword = errors.New("Current password is incorrect")

	ErrRefreshTokenRejected = errors.New("Invalid or expired refresh token")
	ErrRefreshTokenInvalid  = errors.New("Invalid refresh token")
	ErrRefreshTokenExpired  = errors.New("Refresh token expired")

	ErrResetTokenInvalid = errors.New("Invalid or expired reset token")
	ErrResetTokenExpired = errors.New("This reset link has expired. Please request a new one.")
	ErrResetTokenUsed    = errors.New("This reset link has already been used. Please request a new one.")

	ErrVerificationTokenInvalid = errors.New("Invalid or expired verification token")
	ErrEmailDelivery            = errors.New("Failed to send verification email")

	ErrInvalidBucket    = errors.New("Invalid bucket")
	ErrImageTooLarge    = errors.New("File size must be less than 2MB")
	ErrUnsupportedImage = errors.New("Only JPEG and PNG images are allowed")
)

// ValidationError : ошибка входных данных, 400 с текстом правила
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(message string) error {
	return &ValidationError{Message: message}
}
