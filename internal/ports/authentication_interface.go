package ports

import (
	"context"
	"socialconnect-server/internal/model"
)

type AuthenticationService interface {
	Register(ctx context.Context, input model.RegisterInput) (*model.User, error)
	Login(ctx context.Context, identifier, password string, client model.ClientInfo) (*model.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, error)
	Logout(ctx context.Context, userUUID, refreshToken string) error
	ChangePassword(ctx context.Context, userUUID, currentPassword, newPassword string) error

	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) (*model.ResetTokenStatus, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error)
	ResendVerification(ctx context.Context, email string) (alreadyVerified bool, err error)
}
