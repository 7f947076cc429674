// Package authclient : клиентская сторона сессии SocialConnect. Хранит пару токенов,
// проверяет access токен перед защищёнными запросами и сбрасывает сессию по ответу сервера
package authclient

import "sync"

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session : хранилище пары токенов одного клиента
type Session interface {
	Tokens() Tokens
	Store(tokens Tokens)
	Clear()
}

type MemorySession struct {
	mu     sync.RWMutex
	tokens Tokens
}

func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

func (s *MemorySession) Store(tokens Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
}

func (s *MemorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
}
