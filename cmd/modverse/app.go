package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/modverse-client/internal/api"
	"github.com/pribylovaa/modverse-client/internal/client"
	"github.com/pribylovaa/modverse-client/internal/config"
	apierrors "github.com/pribylovaa/modverse-client/internal/errors"
	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/pkg/redact"
	"github.com/pribylovaa/modverse-client/internal/session"
	"github.com/pribylovaa/modverse-client/internal/tokenstore"
)

// ErrUsage — неверный вызов команды.
var ErrUsage = errors.New("usage")

const commandsHelp = `commands:
  login <user> <password> [captcha_id captcha_code]
  admin-login <user> <password>
  logout
  status
  whoami
  games [name]
  mods [--game id] [--name s] [--category a,b] [--page n] [--page-size n]
  mod <id>
  verify <email>         (once per 60s, within one run)
  reset-email <email>    (once per 60s, within one run)

`

type command func(ctx context.Context, args []string) (any, error)

type app struct {
	cfg   *config.Config
	log   *slog.Logger
	out   io.Writer
	store tokenstore.Store
	reg   *prometheus.Registry
	api   *api.API
	cmds  map[string]command
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) (*app, error) {
	const op = "main.newApp"

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens := tokenstore.NewTokens(store)
	sess := session.New(tokens)
	reg := prometheus.NewRegistry()

	c, err := client.New(client.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Tokens:    tokens,
		Session:   sess,
		Logger:    log,
		Metrics:   client.NewMetrics(reg),
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		out:   out,
		store: store,
		reg:   reg,
		api: api.New(c, sess, api.Cooldowns{
			Verify:     client.NewCooldown(cfg.Cooldown.Verify),
			ResetEmail: client.NewCooldown(cfg.Cooldown.ResetEmail),
		}),
	}

	a.cmds = map[string]command{
		"login":       a.login,
		"admin-login": a.adminLogin,
		"logout":      a.logout,
		"status":      a.status,
		"whoami":      a.whoami,
		"games":       a.games,
		"mods":        a.mods,
		"mod":         a.mod,
		"verify":      a.verify,
		"reset-email": a.resetEmail,
	}

	return a, nil
}

func openStore(ctx context.Context, sc config.StorageConfig) (tokenstore.Store, error) {
	switch sc.Kind {
	case config.StorageMemory:
		return tokenstore.NewMemory(), nil
	case config.StorageRedis:
		return tokenstore.NewRedis(ctx, sc.RedisURL, sc.RedisPrefix)
	default:
		path, err := sc.TokenFile()
		if err != nil {
			return nil, err
		}
		return tokenstore.NewFile(path)
	}
}

func (a *app) Close() error { return a.store.Close() }

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", ErrUsage)
	}

	cmd, ok := a.cmds[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	a.log.Debug("command_started", slog.String("command", args[0]))

	res, err := cmd(ctx, args[1:])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// writeMetrics выгружает метрики клиента для textfile-коллектора.
func (a *app) writeMetrics() error {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}

	return prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.reg)
}

func (a *app) login(ctx context.Context, args []string) (any, error) {
	req := models.LoginRequest{}
	switch len(args) {
	case 4:
		req.CaptchaID, req.CaptchaCode = args[2], args[3]
		fallthrough
	case 2:
		req.Username, req.Password = args[0], args[1]
	default:
		return nil, fmt.Errorf("%w: login <user> <password> [captcha_id captcha_code]", ErrUsage)
	}

	env, err := a.api.Auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := apierrors.FromEnvelope(env); err != nil {
		return nil, err
	}

	return a.api.Session().Profile(), nil
}

func (a *app) adminLogin(ctx context.Context, args []string) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: admin-login <user> <password>", ErrUsage)
	}

	env, err := a.api.Auth.LoginAdmin(ctx, models.LoginAdminRequest{Username: args[0], Password: args[1]})
	if err != nil {
		return nil, err
	}
	if err := apierrors.FromEnvelope(env); err != nil {
		return nil, err
	}

	return map[string]any{"logged_in": true, "admin": true, "token": redact.Token(env.Data)}, nil
}

func (a *app) logout(ctx context.Context, _ []string) (any, error) {
	if err := a.api.Auth.Logout(ctx); err != nil {
		return nil, err
	}

	return map[string]bool{"logged_in": false}, nil
}

type statusView struct {
	LoggedIn  bool       `json:"logged_in"`
	Token     string     `json:"token,omitempty"`
	UserID    uint64     `json:"user_id,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	UserName  string     `json:"user_name,omitempty"`
}

func (a *app) status(ctx context.Context, _ []string) (any, error) {
	tok, ok, err := a.api.Session().Tokens().Access(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return statusView{}, nil
	}

	v := statusView{Token: redact.Token(tok)}
	if cl, err := session.ParseClaims(tok); err == nil {
		v.UserID, v.Role = cl.UserID, cl.Role
		v.Expired = cl.Expired(time.Now())
		if !cl.ExpiresAt.IsZero() {
			exp := cl.ExpiresAt
			v.ExpiresAt = &exp
		}
	}

	v.LoggedIn, err = a.api.RestoreSession(ctx)
	if err != nil {
		return nil, err
	}
	if p := a.api.Session().Profile(); p != nil {
		v.UserName = p.UserName
	}

	return v, nil
}

func (a *app) whoami(ctx context.Context, _ []string) (any, error) {
	env, err := a.api.Users.SelfWithMods(ctx)
	if err != nil {
		return nil, err
	}

	return env.Data, apierrors.FromEnvelope(env)
}

func (a *app) games(ctx context.Context, args []string) (any, error) {
	q := models.GameQuery{}
	if len(args) > 0 {
		q.Name = args[0]
	}

	env, err := a.api.Games.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return env.Data, apierrors.FromEnvelope(env)
}

func (a *app) mods(ctx context.Context, args []string) (any, error) {
	fs := flag.NewFlagSet("mods", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		q        models.ModQuery
		category string
	)
	fs.Uint64Var(&q.GameID, "game", 0, "game id")
	fs.StringVar(&q.Name, "name", "", "mod name")
	fs.StringVar(&category, "category", "", "comma separated categories")
	fs.IntVar(&q.Page, "page", 0, "page number")
	fs.IntVar(&q.PageSize, "page-size", 0, "page size")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: mods: %v", ErrUsage, err)
	}
	if category != "" {
		q.Category = strings.Split(category, ",")
	}

	env, err := a.api.Mods.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return env.Data, apierrors.FromEnvelope(env)
}

func (a *app) mod(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: mod <id>", ErrUsage)
	}

	modID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: mod id %q is not a number", ErrUsage, args[0])
	}

	env, err := a.api.Mods.Get(ctx, modID)
	if err != nil {
		return nil, err
	}

	return env.Data, apierrors.FromEnvelope(env)
}

func (a *app) verify(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: verify <email>", ErrUsage)
	}

	return sent(a.api.Auth.SendVerification(ctx, args[0]))
}

func (a *app) resetEmail(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: reset-email <email>", ErrUsage)
	}

	return sent(a.api.Auth.SendResetEmail(ctx, args[0]))
}

func sent(env *models.Raw, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if err := apierrors.FromEnvelope(env); err != nil {
		return nil, err
	}

	return map[string]bool{"sent": true}, nil
}

type errorView struct {
	Error   string      `json:"error"`
	Code    models.Code `json:"code,omitempty"`
	Status  int         `json:"status,omitempty"`
	Timeout bool        `json:"timeout,omitempty"`
}

// printError печатает ошибку в stderr JSON-объектом с текстом для человека.
func printError(w io.Writer, err error) {
	v := errorView{Error: err.Error()}

	var (
		ae *apierrors.APIError
		ce *apierrors.ConnectionError
	)
	switch {
	case errors.As(err, &ae):
		v.Code, v.Status = ae.Code, ae.Status
		v.Error = ae.Message
		if v.Error == "" {
			v.Error = apierrors.Message(ae.Code)
		}
	case errors.As(err, &ce):
		v.Error = "cannot reach server: " + ce.Err.Error()
		v.Timeout = ce.Timeout()
	case errors.Is(err, ErrUsage):
		v.Error = err.Error() + "\n" + commandsHelp
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
