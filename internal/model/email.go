package model

type EmailKind string

const (
	EmailVerification  EmailKind = "email_verification"
	EmailPasswordReset EmailKind = "password_reset"
)

// EmailMessage : задание на отправку письма внешнему почтовому сервису
type EmailMessage struct {
	Kind     EmailKind `json:"kind"`
	To       string    `json:"to"`
	Username string    `json:"username"`
	Link     string    `json:"link"`
}
