package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"socialconnect-server/config"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/security"
	"socialconnect-server/internal/util"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRegistryRepository : Redis реестр выданных токенов сброса пароля и подтверждения email.
// Токен без записи в реестре считается поддельным. Записи живут ровно окно действия токена
type TokenRegistryRepository struct {
	client *config.RedisClient
}

func NewTokenRegistryRepository(rdb *config.RedisClient) *TokenRegistryRepository {
	return &TokenRegistryRepository{rdb}
}

func (r *TokenRegistryRepository) Register(ctx context.Context, token string, issued *model.IssuedToken, ttl time.Duration) error {
	data, err := json.Marshal(issued)
	if err != nil {
		return util.LogError("[TokenRegistry] ошибка сериализации токена", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(issued.Purpose, token), data, ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("[TokenRegistry] ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

// Lookup : nil без ошибки, если токен не выдавался или окно истекло
func (r *TokenRegistryRepository) Lookup(ctx context.Context, purpose model.TokenPurpose, token string) (*model.IssuedToken, error) {
	val, err := r.client.Client.Get(ctx, r.key(purpose, token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("[TokenRegistry] ошибка получения токена из Redis", err)
	}

	var issued model.IssuedToken
	if err := json.Unmarshal([]byte(val), &issued); err != nil {
		return nil, util.LogError("[TokenRegistry] ошибка десериализации токена", err)
	}
	return &issued, nil
}

func (r *TokenRegistryRepository) key(purpose model.TokenPurpose, token string) string {
	return fmt.Sprintf("issued:%s:%s", purpose, security.HashToken(token))
}
