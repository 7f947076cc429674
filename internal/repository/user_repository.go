package repository

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"socialconnect-server/config"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/util"
	"strings"
	"time"

	"github.com/google/uuid"
)

const cursorSeparator = "|"

const userColumns = `uuid, email, username, password_hash, first_name, last_name, role, is_active,
	email_verified, last_login, avatar_url, created_at, updated_at`

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя, дубликат email или username даёт ErrConflict
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, username, password_hash, first_name, last_name, role, is_active, email_verified)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + userColumns

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.EmailVerified,
	).StructScan(createdUser)

	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok {
			return nil, fmt.Errorf("[UserRepo] %s: %w", constraint, ErrConflict)
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	return r.getOne(ctx, query, uuid)
}

// FindByEmailOrUsername : email сравнивается без учёта регистра, username точно
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, identifier string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) OR username = $1 LIMIT 1`
	return r.getOne(ctx, query, identifier)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// UpdatePassword : меняет пароль пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE uuid = $1`
	return r.execAffectingOne(ctx, "не удалось обновить пароль", query, uuid, newPasswordHash)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, uuid string, at time.Time) error {
	query := `UPDATE users SET last_login = $2 WHERE uuid = $1`
	return r.execAffectingOne(ctx, "не удалось обновить last_login", query, uuid, at)
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, uuid string) error {
	query := `UPDATE users SET email_verified = TRUE, updated_at = now() WHERE uuid = $1`
	return r.execAffectingOne(ctx, "не удалось подтвердить email", query, uuid)
}

// SetActive : активация и деактивация. Пользователи никогда не удаляются
func (r *UserRepository) SetActive(ctx context.Context, uuid string, active bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = now() WHERE uuid = $1`
	return r.execAffectingOne(ctx, "не удалось изменить статус пользователя", query, uuid, active)
}

func (r *UserRepository) execAffectingOne(ctx context.Context, message string, query string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return util.LogError("[UserRepo] "+message, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить результат обновления", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// EncodeUserCursor : курсор страницы, пара (created_at, uuid) последней строки
func EncodeUserCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseUserCursor : любой повреждённый курсор даёт ErrInvalidCursor
func ParseUserCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	createdPart, idPart, ok := strings.Cut(string(raw), cursorSeparator)
	if !ok {
		return time.Time{}, "", fmt.Errorf("%w: нет разделителя", ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdPart)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return createdAt, id.String(), nil
}

// ListUsers : вывод списка пользователей с cursor-based пагинацией по (created_at, uuid)
func (r *UserRepository) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        ORDER BY created_at ASC, uuid ASC
        LIMIT $1
    `
	args := []any{limit + 1} // +1 для проверки наличия следующей страницы

	if cursor != "" {
		createdAt, id, err := ParseUserCursor(cursor)
		if err != nil {
			return nil, "", err
		}

		// строки с тем же created_at не теряются между страницами
		query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE (created_at, uuid) > ($1, $2)
        ORDER BY created_at ASC, uuid ASC
        LIMIT $3
    `
		args = []any{createdAt, id, limit + 1}
	}

	var users []*model.User
	if err := r.DB.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, "", util.LogError("[UserRepo] не удалось получить список пользователей", err)
	}

	var nextCursor string
	if len(users) > limit {
		users = users[:limit]
		last := users[len(users)-1]
		nextCursor = EncodeUserCursor(last.CreatedAt, last.UUID)
	}

	return users, nextCursor, nil
}
