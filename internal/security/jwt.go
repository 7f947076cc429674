package security

import (
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"socialconnect-server/config"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/util"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL : срок жизни, который используется при некорректной строке TTL
const DefaultTokenTTL = 30 * time.Minute

// ErrInvalidToken : единая ошибка проверки токена, причина наружу не раскрывается
var ErrInvalidToken = errors.New("invalid or tampered token")

type TokenType string

const (
	AccessTokenType  TokenType = "access"
	RefreshTokenType TokenType = "refresh"
)

var ttlPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

type Claims struct {
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	TokenType TokenType  `json:"tokenType"`
	jwt.RegisteredClaims
}

// Payload : claims пользователя без служебных полей
func (c *Claims) Payload() model.TokenPayload {
	return model.TokenPayload{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

type JWTService struct {
	*config.JWTConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		JWTConfig:  cfg,
		accessTTL:  ParseTTL(cfg.AccessTokenTTL),
		refreshTTL: ParseTTL(cfg.RefreshTokenTTL),
		now:        time.Now,
	}
}

// WithClock : подменяет источник времени для выдачи и проверки токенов
func (service *JWTService) WithClock(now func() time.Time) *JWTService {
	service.now = now
	return service
}

func (service *JWTService) AccessTTL() time.Duration {
	return service.accessTTL
}

func (service *JWTService) RefreshTTL() time.Duration {
	return service.refreshTTL
}

// ParseTTL : разбирает строку вида <целое><m|h|d>. Любой другой ввод даёт 30 минут
func ParseTTL(s string) time.Duration {
	match := ttlPattern.FindStringSubmatch(s)
	if match == nil {
		return DefaultTokenTTL
	}

	value, err := strconv.Atoi(match[1])
	if err != nil || value <= 0 {
		return DefaultTokenTTL
	}

	var unit time.Duration
	switch match[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	if int64(value) > math.MaxInt64/int64(unit) {
		return DefaultTokenTTL
	}

	return time.Duration(value) * unit
}

func (service *JWTService) IssueAccessToken(payload model.TokenPayload) (string, error) {
	token, _, err := service.sign(payload, AccessTokenType, service.accessTTL)
	return token, err
}

func (service *JWTService) IssueRefreshToken(payload model.TokenPayload) (string, error) {
	token, _, err := service.sign(payload, RefreshTokenType, service.refreshTTL)
	return token, err
}

// GenerateAccessRefreshTokens : выдаёт пару токенов и возвращает срок жизни refresh токена
func (service *JWTService) GenerateAccessRefreshTokens(payload model.TokenPayload) (*model.TokensPair, time.Time, error) {
	accessToken, _, err := service.sign(payload, AccessTokenType, service.accessTTL)
	if err != nil {
		return nil, time.Time{}, err
	}

	refreshToken, refreshExpiresAt, err := service.sign(payload, RefreshTokenType, service.refreshTTL)
	if err != nil {
		return nil, time.Time{}, err
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, refreshExpiresAt, nil
}

func (service *JWTService) sign(payload model.TokenPayload, tokenType TokenType, ttl time.Duration) (string, time.Time, error) {
	now := service.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID:    payload.UserID,
		Email:     payload.Email,
		Role:      payload.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", time.Time{}, util.LogError("[JWTService] ошибка подписи токена", err)
	}

	return signed, expiresAt, nil
}

// Verify : проверяет алгоритм, подпись и срок жизни. Любая ошибка сводится к ErrInvalidToken
func (service *JWTService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	jwtToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)

	if err != nil || !jwtToken.Valid {
		log.Printf("[JWTService] невалидный токен: %v", err)
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccess : токен должен быть access, refresh не принимается как bearer
func (service *JWTService) VerifyAccess(tokenString string) (*Claims, error) {
	return service.verifyType(tokenString, AccessTokenType)
}

func (service *JWTService) VerifyRefresh(tokenString string) (*Claims, error) {
	return service.verifyType(tokenString, RefreshTokenType)
}

func (service *JWTService) verifyType(tokenString string, tokenType TokenType) (*Claims, error) {
	claims, err := service.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != tokenType {
		log.Printf("[JWTService] неверный тип токена: %q", claims.TokenType)
		return nil, ErrInvalidToken
	}

	return claims, nil
}
