package repository_test

import (
	"context"
	"errors"
	"regexp"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/repository"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"uuid", "email", "username", "password_hash", "first_name", "last_name", "role", "is_active",
	"email_verified", "last_login", "avatar_url", "created_at", "updated_at",
}

func userRow(rows *sqlmock.Rows, uuid string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(uuid, uuid+"@example.com", "user_"+uuid, "hash", "Jane", "Doe", "ADMIN", true,
		true, nil, "", createdAt, createdAt)
}

func TestUserRepository_FindByEmailOrUsername(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1) OR username = $1")).
		WithArgs("jane@example.com").
		WillReturnRows(userRow(sqlmock.NewRows(userRowColumns), "u1", createdAt))

	user, err := repo.FindByEmailOrUsername(context.Background(), "jane@example.com")
	require.NoError(t, err)

	assert.Equal(t, "u1", user.UUID)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)
	assert.Nil(t, user.LastLogin)
	assert.Equal(t, createdAt, user.CreatedAt)
}

func TestUserRepository_FindByUUID_NotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE uuid = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err := repo.FindByUUID(context.Background(), "missing")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_CreateUser_Conflict(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.CreateUser(context.Background(), &model.User{UUID: "u1", Email: "jane@example.com", Role: model.RoleUser})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Contains(t, err.Error(), "users_email_key")
}

func TestUserRepository_CreateUser(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	createdAt := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "u1@example.com", "user_u1", "hash", "Jane", "Doe", model.RoleUser, true, false).
		WillReturnRows(userRow(sqlmock.NewRows(userRowColumns), "u1", createdAt))

	created, err := repo.CreateUser(context.Background(), &model.User{
		UUID: "u1", Email: "u1@example.com", Username: "user_u1", PasswordHash: "hash",
		FirstName: "Jane", LastName: "Doe", Role: model.RoleUser, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.UUID)
	assert.Equal(t, createdAt, created.CreatedAt)
}

func TestUserRepository_SetActive(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	// 1. Пользователь найден
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = $2")).
		WithArgs("u1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetActive(context.Background(), "u1", false))

	// 2. Пользователь не найден
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = $2")).
		WithArgs("missing", true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetActive(context.Background(), "missing", true), repository.ErrNotFound)
}

func TestUserRepository_UpdatePassword_DBError(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $2")).
		WithArgs("u1", "new-hash").
		WillReturnError(errors.New("connection reset"))

	err := repo.UpdatePassword(context.Background(), "u1", "new-hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ListUsers_NextCursor(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{
		"00000000-0000-0000-0000-000000000001",
		"00000000-0000-0000-0000-000000000002",
		"00000000-0000-0000-0000-000000000003",
	}

	rows := sqlmock.NewRows(userRowColumns)
	for i, id := range ids {
		userRow(rows, id, base.Add(time.Duration(i)*time.Minute))
	}

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, uuid ASC")).
		WithArgs(3).
		WillReturnRows(rows)

	users, next, err := repo.ListUsers(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, repository.EncodeUserCursor(base.Add(time.Minute), ids[1]), next)
}

func TestUserRepository_ListUsers_TiesOnCreatedAt(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	same := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := "00000000-0000-0000-0000-00000000000a"
	second := "00000000-0000-0000-0000-00000000000b"

	// 1. Курсор указывает на первую из двух строк с одинаковым created_at
	cursor := repository.EncodeUserCursor(same, first)

	// 2. Запрос сравнивает пару, вторая строка попадает на следующую страницу
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (created_at, uuid) > ($1, $2)")).
		WithArgs(same, first, 11).
		WillReturnRows(userRow(sqlmock.NewRows(userRowColumns), second, same))

	users, next, err := repo.ListUsers(context.Background(), cursor, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, second, users[0].UUID)
	assert.Empty(t, next)
}

func TestUserRepository_ListUsers_InvalidCursor(t *testing.T) {
	database, _ := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	for _, cursor := range []string{
		"yesterday",
		"!!!",
		repository.EncodeUserCursor(time.Now(), "not-a-uuid"),
	} {
		_, _, err := repo.ListUsers(context.Background(), cursor, 10)
		assert.ErrorIs(t, err, repository.ErrInvalidCursor, cursor)
	}
}

func TestParseUserCursor_RoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.UTC)
	id := "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"

	gotTime, gotID, err := repository.ParseUserCursor(repository.EncodeUserCursor(createdAt, id))
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, id, gotID)
}
