package authclient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrSessionInvalid = errors.New("authclient: session is invalid")

// Guard : проверка access токена на стороне клиента без проверки подписи.
// Любая неудача очищает сессию и вызывает onLogout (переход на страницу входа)
type Guard struct {
	session  Session
	onLogout func(reason string)
	now      func() time.Time
}

func NewGuard(session Session, onLogout func(reason string)) *Guard {
	return &Guard{
		session:  session,
		onLogout: onLogout,
		now:      time.Now,
	}
}

func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

func (g *Guard) Session() Session {
	return g.session
}

// PreCheck : токен есть, состоит из трёх сегментов и exp ещё не наступил.
// Токен без exp считается истёкшим
func (g *Guard) PreCheck() error {
	reason := g.verdict(g.session.Tokens().AccessToken)
	if reason == "" {
		return nil
	}

	g.logout(reason)
	return fmt.Errorf("%w: %s", ErrSessionInvalid, reason)
}

func (g *Guard) verdict(token string) string {
	if token == "" {
		return "no access token"
	}
	if len(strings.Split(token, ".")) != 3 {
		return "malformed access token"
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "undecodable access token"
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "access token has no expiry"
	}
	if exp.Time.Before(g.now()) {
		return "access token expired"
	}
	return ""
}

func (g *Guard) logout(reason string) {
	g.session.Clear()
	if g.onLogout != nil {
		g.onLogout(reason)
	}
}
