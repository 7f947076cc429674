package repository

import (
	"context"
	"fmt"
	"socialconnect-server/config"
	"socialconnect-server/internal/util"
)

// UsedTokenRepository : журнал погашенных токенов сброса пароля, только добавление
type UsedTokenRepository struct {
	*config.Database
}

func NewUsedTokenRepository(database *config.Database) *UsedTokenRepository {
	return &UsedTokenRepository{database}
}

func (r *UsedTokenRepository) IsUsed(ctx context.Context, tokenHash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM used_tokens WHERE token_hash = $1)`
	err := r.DB.GetContext(ctx, &exists, query, tokenHash)
	if err != nil {
		return false, util.LogError("[UsedTokenRepo] ошибка проверки журнала токенов", err)
	}
	return exists, nil
}

// MarkUsed : token_hash уникален, повторная запись (гонка двух погашений) даёт ErrConflict
func (r *UsedTokenRepository) MarkUsed(ctx context.Context, tokenHash, userEmail string) error {
	query := `INSERT INTO used_tokens (token_hash, user_email) VALUES ($1, $2)`
	_, err := r.DB.ExecContext(ctx, query, tokenHash, userEmail)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("[UsedTokenRepo] %w", ErrConflict)
		}
		return util.LogError("[UsedTokenRepo] не удалось записать использованный токен", err)
	}
	return nil
}
