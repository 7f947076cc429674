package ports

import (
	"context"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/security"
	"time"
)

type JWTRepositoryInterface interface {
	Create(ctx context.Context, token, userUUID string, expiresAt time.Time, client model.ClientInfo) (*model.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, token, userUUID string) error
	RevokeByID(ctx context.Context, refreshTokenUUID string) error
	RevokeAllForUser(ctx context.Context, userUUID string) (int64, error)
}

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(payload model.TokenPayload) (*model.TokensPair, time.Time, error)
	VerifyRefresh(tokenString string) (*security.Claims, error)
}
