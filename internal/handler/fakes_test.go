package handler_test

import (
	"context"
	"net/url"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/repository"
	"socialconnect-server/internal/security"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ===== IN-MEMORY FAKES =====

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*model.User{}}
}

func (f *fakeUsers) put(u *model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.UUID] = &cp
}

func (f *fakeUsers) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, repository.ErrConflict
		}
		if u.Username == user.Username {
			return nil, repository.ErrConflict
		}
	}

	cp := *user
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.users[cp.UUID] = &cp

	out := cp
	return &out, nil
}

func (f *fakeUsers) FindByUUID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmailOrUsername(_ context.Context, identifier string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, identifier) || u.Username == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) update(id string, fn func(u *model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return f.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return f.update(id, func(u *model.User) { u.LastLogin = &at })
}

func (f *fakeUsers) SetEmailVerified(_ context.Context, id string) error {
	return f.update(id, func(u *model.User) { u.EmailVerified = true })
}

func (f *fakeUsers) SetActive(_ context.Context, id string, active bool) error {
	return f.update(id, func(u *model.User) { u.IsActive = active })
}

func (f *fakeUsers) ListUsers(_ context.Context, cursor string, limit int) ([]*model.User, string, error) {
	if cursor != "" {
		if _, _, err := repository.ParseUserCursor(cursor); err != nil {
			return nil, "", err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.User
	for _, u := range f.users {
		if len(out) == limit {
			break
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, "", nil
}

type fakeRefreshTokens struct {
	mu   sync.Mutex
	rows map[string]*model.RefreshToken
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{rows: map[string]*model.RefreshToken{}}
}

func (f *fakeRefreshTokens) Create(_ context.Context, token, userUUID string, expiresAt time.Time, client model.ClientInfo) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row := &model.RefreshToken{
		UUID:      uuid.NewString(),
		UserUUID:  userUUID,
		TokenHash: security.HashToken(token),
		ExpiresAt: expiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: time.Now(),
	}
	f.rows[row.TokenHash] = row

	cp := *row
	return &cp, nil
}

func (f *fakeRefreshTokens) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[security.HashToken(token)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRefreshTokens) Revoke(_ context.Context, token, userUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[security.HashToken(token)]
	if !ok || row.UserUUID != userUUID {
		return repository.ErrNotFound
	}
	row.IsRevoked = true
	return nil
}

func (f *fakeRefreshTokens) RevokeByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UUID == id && !row.IsRevoked {
			row.IsRevoked = true
			return nil
		}
	}
	return repository.ErrAlreadyRevoked
}

func (f *fakeRefreshTokens) RevokeAllForUser(_ context.Context, userUUID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, row := range f.rows {
		if row.UserUUID == userUUID && !row.IsRevoked {
			row.IsRevoked = true
			n++
		}
	}
	return n, nil
}

type fakeUsedTokens struct {
	mu     sync.Mutex
	hashes map[string]string
}

func newFakeUsedTokens() *fakeUsedTokens {
	return &fakeUsedTokens{hashes: map[string]string{}}
}

func (f *fakeUsedTokens) IsUsed(_ context.Context, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.hashes[tokenHash]
	return ok, nil
}

func (f *fakeUsedTokens) MarkUsed(_ context.Context, tokenHash, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.hashes[tokenHash]; ok {
		return repository.ErrConflict
	}
	f.hashes[tokenHash] = email
	return nil
}

// fakeMailer : запоминает письма, токен достаётся из ссылки
type fakeMailer struct {
	mu   sync.Mutex
	sent []model.EmailMessage
}

func (f *fakeMailer) Send(_ context.Context, message model.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeMailer) lastToken(kind model.EmailKind) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Kind != kind {
			continue
		}
		link, err := url.Parse(f.sent[i].Link)
		if err != nil {
			return ""
		}
		return link.Query().Get("token")
	}
	return ""
}

type fakeStorage struct{}

func (fakeStorage) GeneratePresignedPutURL(_ context.Context, key, _ string, _ int64, _ time.Duration) (string, error) {
	return "https://s3.test/upload/" + key + "?X-Amz-Signature=sig", nil
}

func (fakeStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

// testClock : часы сервиса аутентификации, которые можно сдвигать
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
