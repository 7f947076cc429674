package repository

import (
	"context"
	"database/sql"
	"errors"
	"socialconnect-server/config"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/security"
	"socialconnect-server/internal/util"
	"time"

	"github.com/google/uuid"
)

type JWTRepository struct {
	*config.Database
}

func NewJWTRepository(database *config.Database) *JWTRepository {
	return &JWTRepository{database}
}

// Create сохраняет refresh-токен в базе данных. Хранится только sha256 от значения токена
func (r *JWTRepository) Create(ctx context.Context, token, userUUID string, expiresAt time.Time, client model.ClientInfo) (*model.RefreshToken, error) {
	refreshToken := &model.RefreshToken{
		UUID:      uuid.NewString(),
		UserUUID:  userUUID,
		TokenHash: security.HashToken(token),
		ExpiresAt: expiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}

	query := `INSERT INTO refresh_tokens (uuid, user_uuid, token_hash, expires_at, is_revoked, user_agent, ip_address)
				VALUES ($1, $2, $3, $4, FALSE, $5, $6)
				RETURNING created_at
	`

	err := r.DB.QueryRowContext(ctx, query,
		refreshToken.UUID,
		refreshToken.UserUUID,
		refreshToken.TokenHash,
		refreshToken.ExpiresAt,
		refreshToken.UserAgent,
		refreshToken.IPAddress,
	).Scan(&refreshToken.CreatedAt)

	if err != nil {
		return nil, util.LogError("[JWTRepo] ошибка вставки данных в БД", err)
	}

	return refreshToken, nil
}

// FindByToken ищет refresh-токен по его значению
// Возвращает ErrNotFound, если токен никогда не выдавался
func (r *JWTRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `SELECT uuid, user_uuid, token_hash, expires_at, is_revoked, user_agent, ip_address, created_at
				FROM refresh_tokens WHERE token_hash = $1`

	refreshToken := &model.RefreshToken{}
	err := r.DB.GetContext(ctx, refreshToken, query, security.HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[JWTRepo] ошибка при выполнении запроса", err)
	}

	return refreshToken, nil
}

// Revoke отзывает токен только если он принадлежит userUUID
// Чужой или неизвестный токен даёт ErrNotFound и ничего не меняет
func (r *JWTRepository) Revoke(ctx context.Context, token, userUUID string) error {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE WHERE token_hash = $1 AND user_uuid = $2`

	result, err := r.DB.ExecContext(ctx, query, security.HashToken(token), userUUID)
	if err != nil {
		return util.LogError("[JWTRepo] не удалось отозвать рефреш токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[JWTRepo] не удалось проверить, отозван ли токен", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// RevokeByID отзывает токен по идентификатору записи
// Условное обновление: из двух параллельных ротаций одного токена успешна только одна
func (r *JWTRepository) RevokeByID(ctx context.Context, refreshTokenUUID string) error {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE WHERE uuid = $1 AND is_revoked = FALSE`

	result, err := r.DB.ExecContext(ctx, query, refreshTokenUUID)
	if err != nil {
		return util.LogError("[JWTRepo] не удалось обновить рефреш токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[JWTRepo] не удалось проверить, обновлен ли токен", err)
	}
	if rowsAffected == 0 {
		return ErrAlreadyRevoked
	}

	return nil
}

// RevokeAllForUser завершает все сессии пользователя, возвращает число отозванных токенов
func (r *JWTRepository) RevokeAllForUser(ctx context.Context, userUUID string) (int64, error) {
	query := `UPDATE refresh_tokens SET is_revoked = TRUE WHERE user_uuid = $1 AND is_revoked = FALSE`

	result, err := r.DB.ExecContext(ctx, query, userUUID)
	if err != nil {
		return 0, util.LogError("[JWTRepo] не удалось отозвать сессии пользователя", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[JWTRepo] не удалось получить число отозванных токенов", err)
	}

	return rowsAffected, nil
}
