// tokenstore — долговременное хранилище пары токенов клиента.
//
// Хранилище устроено как key/value (аналог localStorage браузерного клиента):
// два фиксированных ключа, значения — строки без префикса "Bearer ".
// Реализации: Memory (процесс), File (JSON на диске), Redis (общий для
// нескольких процессов/машин).
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Фиксированные ключи хранилища.
const (
	KeyAccessToken  = "authorization"
	KeyRefreshToken = "refreshtoken"
)

// ErrClosed — операция над закрытым хранилищем.
var ErrClosed = errors.New("token store closed")

// Store — минимальный контракт key/value хранилища.
//
//go:generate mockgen -source=store.go -destination=../../mocks/tokenstore.go -package=mocks
type Store interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение под ключом.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключи; отсутствующие ключи не считаются ошибкой.
	Delete(ctx context.Context, keys ...string) error
	// Close освобождает ресурсы хранилища.
	Close() error
}

// Tokens — типизированная обёртка над Store для пары access/refresh.
type Tokens struct {
	store Store
}

// NewTokens оборачивает хранилище.
func NewTokens(s Store) *Tokens {
	return &Tokens{store: s}
}

// Store возвращает нижележащее хранилище.
func (t *Tokens) Store() Store { return t.store }

// Access возвращает текущий access-токен.
func (t *Tokens) Access(ctx context.Context) (string, bool, error) {
	return t.get(ctx, KeyAccessToken)
}

// Refresh возвращает текущий refresh-токен.
func (t *Tokens) Refresh(ctx context.Context) (string, bool, error) {
	return t.get(ctx, KeyRefreshToken)
}

// SetAccess сохраняет access-токен (префикс "Bearer " отбрасывается).
func (t *Tokens) SetAccess(ctx context.Context, token string) error {
	return t.set(ctx, KeyAccessToken, token)
}

// SetRefresh сохраняет refresh-токен (префикс "Bearer " отбрасывается).
func (t *Tokens) SetRefresh(ctx context.Context, token string) error {
	return t.set(ctx, KeyRefreshToken, token)
}

// Clear удаляет оба токена.
func (t *Tokens) Clear(ctx context.Context) error {
	const op = "tokenstore.Tokens.Clear"

	if err := t.store.Delete(ctx, KeyAccessToken, KeyRefreshToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (t *Tokens) get(ctx context.Context, key string) (string, bool, error) {
	const op = "tokenstore.Tokens.get"

	v, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %s: %w", op, key, err)
	}
	if !ok || v == "" {
		return "", false, nil
	}

	return v, true, nil
}

func (t *Tokens) set(ctx context.Context, key, token string) error {
	const op = "tokenstore.Tokens.set"

	token = StripBearer(token)
	if token == "" {
		return fmt.Errorf("%s: %s: empty token", op, key)
	}

	if err := t.store.Set(ctx, key, token); err != nil {
		return fmt.Errorf("%s: %s: %w", op, key, err)
	}

	return nil
}

// StripBearer убирает префикс схемы "Bearer " и пробелы по краям.
// Одна схема без токена ("Bearer", "Bearer  ") даёт пустую строку.
func StripBearer(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "Bearer") {
		return ""
	}
	if len(v) >= 7 && strings.EqualFold(v[:7], "Bearer ") {
		v = strings.TrimSpace(v[7:])
	}

	return v
}
