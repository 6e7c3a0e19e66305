package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/pkg/log"
	"github.com/pribylovaa/modverse-client/internal/pkg/redact"
	"github.com/pribylovaa/modverse-client/internal/session"
)

// Действия с cooldown (метка action в метриках).
const (
	ActionVerify     = "verify"
	ActionResetEmail = "reset_email"
)

// Auth — вход, регистрация и восстановление пароля.
type Auth struct {
	c          *client.Client
	sess       *session.Session
	users      *Users
	verify     *client.Cooldown
	resetEmail *client.Cooldown
}

// Login — вход пользователя. Токены приходят в заголовках ответа и
// сохраняются клиентом; при успехе профиль кэшируется в сессии.
func (a *Auth) Login(ctx context.Context, req models.LoginRequest) (*models.Raw, error) {
	const op = "api.Auth.Login"

	env, err := send(ctx, a.c, http.MethodPost, "auth/login/", req)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return env, nil
	}

	a.sess.SetLoggedIn(true)
	if _, err := a.users.Self(ctx); err != nil {
		log.From(ctx).Warn("profile_fetch_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	return env, nil
}

// LoginAdmin — вход в админку. Сервер отдаёт access-токен в data
// (без refresh-токена); он сохраняется как текущий.
func (a *Auth) LoginAdmin(ctx context.Context, req models.LoginAdminRequest) (*models.Envelope[string], error) {
	const op = "api.Auth.LoginAdmin"

	env, err := client.Call[string](ctx, a.c, client.Request{Method: http.MethodPost, Path: "auth/login/admin", Body: req})
	if err != nil {
		return nil, err
	}
	if !env.OK() || env.Data == "" {
		return env, nil
	}

	if err := a.c.Tokens().SetAccess(ctx, env.Data); err != nil {
		log.From(ctx).Error("token_persist_failed", slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}
	a.sess.SetLoggedIn(true)

	return env, nil
}

func (a *Auth) Register(ctx context.Context, req models.RegisterRequest) (*models.Raw, error) {
	return send(ctx, a.c, http.MethodPost, "auth/register/", req)
}

// SendVerification отправляет код подтверждения на email.
// Повтор в течение окна cooldown отклоняется локально, без запроса.
func (a *Auth) SendVerification(ctx context.Context, email string) (*models.Raw, error) {
	return a.guarded(ctx, a.verify, ActionVerify, "auth/verify", email)
}

// SendResetEmail отправляет письмо для сброса пароля (с тем же cooldown).
func (a *Auth) SendResetEmail(ctx context.Context, email string) (*models.Raw, error) {
	return a.guarded(ctx, a.resetEmail, ActionResetEmail, "auth/send_reset_email", email)
}

func (a *Auth) guarded(ctx context.Context, cd *client.Cooldown, action, path, email string) (*models.Raw, error) {
	if !cd.Allow() {
		a.c.Metrics().CooldownRejected(action)
		log.From(ctx).Info("cooldown_rejected",
			slog.String("action", action),
			slog.String("email", redact.Email(email)),
		)
		return client.RateLimited(), nil
	}

	return send(ctx, a.c, http.MethodPost, path, models.EmailRequest{Email: email})
}

func (a *Auth) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.Raw, error) {
	return send(ctx, a.c, http.MethodPut, "auth/reset_password", req)
}

// IsLogin проверяет access-токен на сервере.
func (a *Auth) IsLogin(ctx context.Context) (*models.Envelope[bool], error) {
	return get[bool](ctx, a.c, "auth/is_login", nil)
}

func (a *Auth) UpdatePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.Raw, error) {
	return send(ctx, a.c, http.MethodPut, "auth/update_password", req)
}

func (a *Auth) Captcha(ctx context.Context) (*models.Envelope[models.Captcha], error) {
	return get[models.Captcha](ctx, a.c, "captcha", nil)
}

// Logout — локальный выход; сервер не уведомляется.
func (a *Auth) Logout(ctx context.Context) error {
	return a.sess.Logout(ctx)
}
