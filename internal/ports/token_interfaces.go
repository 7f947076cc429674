package ports

import (
	"context"
	"socialconnect-server/internal/model"
	"time"
)

// UsedTokenRepository : журнал погашенных токенов сброса пароля (SQL)
type UsedTokenRepository interface {
	IsUsed(ctx context.Context, tokenHash string) (bool, error)
	MarkUsed(ctx context.Context, tokenHash, userEmail string) error
}

// TokenRegistry : реестр выданных self-encoded токенов (Redis)
type TokenRegistry interface {
	Register(ctx context.Context, token string, issued *model.IssuedToken, ttl time.Duration) error
	Lookup(ctx context.Context, purpose model.TokenPurpose, token string) (*model.IssuedToken, error)
}

type Mailer interface {
	Send(ctx context.Context, message model.EmailMessage) error
}
