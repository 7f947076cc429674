package security

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedResetToken = errors.New("invalid or expired reset token")
	ErrResetTokenExpired   = errors.New("reset token expired")
)

// допустимое расхождение часов для токенов "из будущего"
const resetTokenClockSkew = time.Minute

// EncodeResetToken : base64(<userId>:<unix-миллисекунды выдачи>)
func EncodeResetToken(userID string, issuedAt time.Time) string {
	raw := userID + ":" + strconv.FormatInt(issuedAt.UnixMilli(), 10)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeResetToken : разбирает токен и проверяет, что он не старше maxAge
func DecodeResetToken(token string, now time.Time, maxAge time.Duration) (string, time.Time, error) {
	raw, err := decodeBase64(token)
	if err != nil {
		return "", time.Time{}, ErrMalformedResetToken
	}

	sep := strings.LastIndex(raw, ":")
	if sep <= 0 || sep == len(raw)-1 {
		return "", time.Time{}, ErrMalformedResetToken
	}

	userID := raw[:sep]
	millis, err := strconv.ParseInt(raw[sep+1:], 10, 64)
	if err != nil || millis <= 0 {
		return "", time.Time{}, ErrMalformedResetToken
	}

	issuedAt := time.UnixMilli(millis)
	if issuedAt.After(now.Add(resetTokenClockSkew)) {
		return "", time.Time{}, ErrMalformedResetToken
	}

	if now.Sub(issuedAt) > maxAge {
		return "", time.Time{}, ErrResetTokenExpired
	}

	return userID, issuedAt, nil
}

// HashToken : sha256 в hex, в хранилищах лежит только он
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func decodeBase64(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedResetToken
	}

	if b, err := base64.StdEncoding.DecodeString(token); err == nil {
		return string(b), nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
