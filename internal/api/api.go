// api — типизированные обёртки над эндпоинтами REST API платформы модов.
//
// Каждый метод возвращает развёрнутый конверт ответа. Ненулевой code в
// конверте при HTTP 2xx ошибкой не считается: его разбирает вызывающий
// (apierrors.FromEnvelope), как и локальный отказ cooldown.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/pkg/log"
	"github.com/pribylovaa/modverse-client/internal/session"
)

// Cooldowns — guard'ы действий, рассылающих письма.
// Нулевое поле заменяется guard'ом с окном client.DefaultCooldown.
type Cooldowns struct {
	Verify     *client.Cooldown
	ResetEmail *client.Cooldown
}

// API — набор ресурсов поверх одного клиента и одной сессии.
type API struct {
	Auth       *Auth
	Users      *Users
	Games      *Games
	Mods       *Mods
	Versions   *Versions
	Comments   *Comments
	Reports    *Reports
	Categories *Categories
	Favorites  *Favorites
	Likes      *Likes
	Uploads    *Uploads

	c    *client.Client
	sess *session.Session
}

// New собирает API.
func New(c *client.Client, s *session.Session, cd Cooldowns) *API {
	if cd.Verify == nil {
		cd.Verify = client.NewCooldown(client.DefaultCooldown)
	}
	if cd.ResetEmail == nil {
		cd.ResetEmail = client.NewCooldown(client.DefaultCooldown)
	}

	users := &Users{c: c, sess: s}

	return &API{
		Auth:       &Auth{c: c, sess: s, users: users, verify: cd.Verify, resetEmail: cd.ResetEmail},
		Users:      users,
		Games:      &Games{c: c},
		Mods:       &Mods{c: c},
		Versions:   &Versions{c: c},
		Comments:   &Comments{c: c},
		Reports:    &Reports{c: c},
		Categories: &Categories{c: c},
		Favorites:  &Favorites{c: c},
		Likes:      &Likes{c: c},
		Uploads:    &Uploads{c: c},
		c:          c,
		sess:       s,
	}
}

// Session возвращает состояние входа.
func (a *API) Session() *session.Session { return a.sess }

// RestoreSession восстанавливает состояние входа при старте процесса:
// если сохранён access-токен, спрашивает auth/is_login и кэширует профиль.
// Истёкший токен обновляется клиентом прозрачно; при неудачном refresh
// сессия сбрасывается и возвращается ошибка.
func (a *API) RestoreSession(ctx context.Context) (bool, error) {
	const op = "api.RestoreSession"

	_, ok, err := a.c.Tokens().Access(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		a.sess.SetLoggedIn(false)
		return false, nil
	}

	env, err := a.Auth.IsLogin(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !env.OK() || !env.Data {
		a.sess.SetLoggedIn(false)
		return false, nil
	}

	a.sess.SetLoggedIn(true)

	if _, err := a.Users.Self(ctx); err != nil {
		log.From(ctx).Warn("profile_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return true, nil
}

func id(v uint64) string { return strconv.FormatUint(v, 10) }

func get[T any](ctx context.Context, c *client.Client, path string, q url.Values) (*models.Envelope[T], error) {
	return client.Call[T](ctx, c, client.Request{Method: http.MethodGet, Path: path, Query: q})
}

func send(ctx context.Context, c *client.Client, method, path string, body any) (*models.Raw, error) {
	return c.Do(ctx, client.Request{Method: method, Path: path, Body: body})
}
