// session — процессное состояние входа: флаг "вошёл", кэш профиля
// и пара токенов. Logout — единственный способ сбросить всё разом.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/pkg/log"
	"github.com/pribylovaa/modverse-client/internal/tokenstore"
)

// Session — разделяемое состояние входа. Безопасно для конкурентного использования;
// изменения — простые присваивания по принципу last-writer-wins.
type Session struct {
	tokens *tokenstore.Tokens

	mu       sync.RWMutex
	loggedIn bool
	profile  *models.User
}

// New создаёт сессию поверх хранилища токенов.
func New(tokens *tokenstore.Tokens) *Session {
	return &Session{tokens: tokens}
}

// Tokens возвращает хранилище токенов сессии.
func (s *Session) Tokens() *tokenstore.Tokens { return s.tokens }

func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loggedIn
}

func (s *Session) SetLoggedIn(v bool) {
	s.mu.Lock()
	s.loggedIn = v
	s.mu.Unlock()
}

// Profile возвращает копию закэшированного профиля (nil, если его нет).
func (s *Session) Profile() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil
	}

	p := *s.profile
	return &p
}

func (s *Session) SetProfile(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil {
		s.profile = nil
		return
	}

	p := *u
	s.profile = &p
}

// Logout — локальный выход: флаг сбрасывается, профиль и оба токена удаляются.
// Сервер не уведомляется. Состояние в памяти сбрасывается даже при ошибке хранилища.
func (s *Session) Logout(ctx context.Context) error {
	const op = "session.Logout"

	s.mu.Lock()
	s.loggedIn = false
	s.profile = nil
	s.mu.Unlock()

	if err := s.tokens.Clear(ctx); err != nil {
		log.From(ctx).Error("session_logout_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("session_logout")

	return nil
}
