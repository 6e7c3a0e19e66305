package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/modverse-client/internal/tokenstore"
)

// ErrInvalidToken — строка не является разбираемым JWT.
var ErrInvalidToken = errors.New("invalid token")

// Claims — полезная нагрузка access-токена бэкенда.
type Claims struct {
	UserID    uint64
	Role      string
	ExpiresAt time.Time
}

// Expired сообщает, истёк ли токен к моменту now.
// Токен без exp считается бессрочным.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ParseClaims разбирает токен БЕЗ проверки подписи: ключа у клиента нет,
// результат пригоден только для отображения (status/whoami).
func ParseClaims(token string) (Claims, error) {
	const op = "session.ParseClaims"

	token = tokenstore.StripBearer(token)
	if token == "" {
		return Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}

	var c Claims

	// id бэкенд кладёт строкой; на всякий случай принимаем и число.
	switch v := mc["id"].(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Claims{}, fmt.Errorf("%s: %w: id %q", op, ErrInvalidToken, v)
		}
		c.UserID = id
	case float64:
		c.UserID = uint64(v)
	}

	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidToken, err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}

	return c, nil
}
