package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/modverse-client/internal/apitest"
	"github.com/pribylovaa/modverse-client/internal/config"
	apierrors "github.com/pribylovaa/modverse-client/internal/errors"
	"github.com/pribylovaa/modverse-client/internal/models"
)

type testApp struct {
	*app
	srv *apitest.Server
	out *bytes.Buffer
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()

	srv := apitest.New(t)
	srv.AddUser("neo", "neo@example.com", "secret", models.RoleUser)
	srv.AddUser("root", "root@example.com", "toor", models.RoleAdmin)

	cfg := &config.Config{
		Env: envLocal,
		API: config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, UserAgent: "modverse-test"},
		Storage: config.StorageConfig{
			Kind: config.StorageMemory,
		},
		Cooldown: config.CooldownConfig{Verify: time.Minute, ResetEmail: time.Minute},
	}
	if mutate != nil {
		mutate(cfg)
	}

	out := &bytes.Buffer{}
	a, err := newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &testApp{app: a, srv: srv, out: out}
}

// exec выполняет команду и разбирает её JSON-вывод в v.
func (ta *testApp) exec(t *testing.T, v any, args ...string) {
	t.Helper()

	ta.out.Reset()
	require.NoError(t, ta.run(context.Background(), args))
	if v != nil {
		require.NoError(t, json.Unmarshal(ta.out.Bytes(), v))
	}
}

func TestApp_LoginStatusLogout(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)

	var st statusView
	ta.exec(t, &st, "status")
	require.False(t, st.LoggedIn)
	require.Empty(t, st.Token)

	var profile models.User
	ta.exec(t, &profile, "login", "neo", "secret")
	require.Equal(t, "neo", profile.UserName)

	var me models.UserWithMods
	ta.exec(t, &me, "whoami")
	require.Equal(t, "neo", me.UserName)
	require.Equal(t, "withMod=true", ta.srv.Last().Query)

	ta.exec(t, &st, "status")
	require.True(t, st.LoggedIn)
	require.Equal(t, models.RoleUser, st.Role)
	require.Equal(t, "neo", st.UserName)
	require.NotZero(t, st.UserID)
	require.NotNil(t, st.ExpiresAt)
	require.False(t, st.Expired)
	require.NotContains(t, ta.out.String(), "eyJ", "full token must not be printed")

	var out map[string]bool
	ta.exec(t, &out, "logout")
	require.False(t, out["logged_in"])

	st = statusView{}
	ta.exec(t, &st, "status")
	require.False(t, st.LoggedIn)
}

func TestApp_AdminLogin(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)

	var out map[string]any
	ta.exec(t, &out, "admin-login", "root", "toor")
	require.Equal(t, true, out["admin"])

	err := newTestApp(t, nil).run(context.Background(), []string{"admin-login", "neo", "secret"})
	require.Error(t, err)
}

func TestApp_LoginFailed_PrintsMessage(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)

	err := ta.run(context.Background(), []string{"login", "neo", "wrong"})
	require.ErrorIs(t, err, apierrors.ErrLoginFailed)

	var buf bytes.Buffer
	printError(&buf, err)

	var v errorView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	require.Equal(t, models.CodeLoginFailed, v.Code)
	require.NotEmpty(t, v.Error)
}

func TestApp_Verify_Cooldown(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)

	var out map[string]bool
	ta.exec(t, &out, "verify", "neo@example.com")
	require.True(t, out["sent"])

	err := ta.run(context.Background(), []string{"verify", "neo@example.com"})
	require.ErrorIs(t, err, apierrors.ErrRateLimited)
	require.Equal(t, int64(1), ta.srv.VerifyCalls())

	var buf bytes.Buffer
	printError(&buf, err)

	var v errorView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	require.Equal(t, models.CodeRateLimited, v.Code)
	require.Equal(t, apierrors.Message(models.CodeRateLimited), v.Error)

	ta.exec(t, &out, "reset-email", "neo@example.com")
	require.True(t, out["sent"])
}

func TestApp_ModsFlags(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	ta.srv.Route(http.MethodGet, "/mod", false, func(r *http.Request) (int, any) {
		return http.StatusOK, models.List[models.Mod]{List: []models.Mod{{ID: 5, Name: "hd"}}, Total: 1}
	})

	var list models.List[models.Mod]
	ta.exec(t, &list, "mods", "--game", "3", "--category", "ui,maps", "--page", "2")
	require.Equal(t, int64(1), list.Total)
	require.Equal(t, "hd", list.List[0].Name)

	q, err := url.ParseQuery(ta.srv.Last().Query)
	require.NoError(t, err)
	require.Equal(t, url.Values{"gameID": {"3"}, "category": {"ui", "maps"}, "page": {"2"}}, q)
}

func TestApp_Mod_NotFound(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	ta.srv.Route(http.MethodGet, "/mod/{id}", false, func(r *http.Request) (int, any) {
		return http.StatusOK, &apitest.Fail{Code: models.CodeDataNotExist, Message: "mod not found"}
	})

	err := ta.run(context.Background(), []string{"mod", "9"})
	require.ErrorIs(t, err, apierrors.ErrNotFound)
	require.Equal(t, "/mod/9", ta.srv.Last().Path)
}

func TestApp_Usage(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)

	tests := [][]string{
		nil,
		{"frobnicate"},
		{"login", "neo"},
		{"admin-login"},
		{"mod"},
		{"mod", "abc"},
		{"verify"},
		{"reset-email", "a", "b"},
		{"mods", "--unknown"},
	}

	for _, args := range tests {
		err := ta.run(context.Background(), args)
		require.ErrorIs(t, err, ErrUsage, "args %v", args)
	}
	require.Empty(t, ta.srv.Requests())

	var buf bytes.Buffer
	printError(&buf, ta.run(context.Background(), []string{"frobnicate"}))
	require.Contains(t, buf.String(), "login <user> <password>")
	require.Contains(t, buf.String(), "reset-email <email>")
	require.Contains(t, buf.String(), "verify <email>         (once per 60s, within one run)")
}

func TestApp_OutputKeepsHTMLChars(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	ta.srv.Route(http.MethodGet, "/mod/{id}", false, func(r *http.Request) (int, any) {
		if chi.URLParam(r, "id") == "1" {
			return http.StatusOK, models.Mod{ID: 1, Name: "<HD> Tom & Jerry"}
		}
		return http.StatusOK, &apitest.Fail{Code: models.CodeDataNotExist, Message: "mod <9> & co not found"}
	})

	ta.exec(t, nil, "mod", "1")
	require.Contains(t, ta.out.String(), `"<HD> Tom & Jerry"`)
	require.NotContains(t, ta.out.String(), `\u003c`)

	err := ta.run(context.Background(), []string{"mod", "9"})
	require.ErrorIs(t, err, apierrors.ErrNotFound)

	var buf bytes.Buffer
	printError(&buf, err)
	require.Contains(t, buf.String(), `"mod <9> & co not found"`)
	require.NotContains(t, buf.String(), `\u0026`)
}

func TestApp_ConnectionError(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	ta.srv.Close()

	err := ta.run(context.Background(), []string{"games"})

	var ce *apierrors.ConnectionError
	require.ErrorAs(t, err, &ce)

	var buf bytes.Buffer
	printError(&buf, err)
	require.Contains(t, buf.String(), "cannot reach server")
}

func TestApp_MetricsTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modverse.prom")
	ta := newTestApp(t, func(c *config.Config) { c.Metrics.Textfile = path })
	ta.srv.Route(http.MethodGet, "/game", false, func(r *http.Request) (int, any) {
		return http.StatusOK, models.List[models.Game]{}
	})

	ta.exec(t, nil, "games", "sky")
	require.Equal(t, "name=sky", ta.srv.Last().Query)
	require.NoError(t, ta.writeMetrics())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), `modverse_client_requests_total{method="GET",outcome="ok"} 1`), string(b))
}

func TestApp_MetricsTextfile_Disabled(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	require.NoError(t, ta.writeMetrics())
}

func TestOpenStore_File(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	st, err := openStore(ctx, config.StorageConfig{Kind: config.StorageFile, FilePath: path})
	require.NoError(t, err)
	require.NoError(t, st.Set(ctx, "authorization", "abc"))
	require.NoError(t, st.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestOpenStore_RedisBadURL(t *testing.T) {
	t.Parallel()

	_, err := openStore(context.Background(), config.StorageConfig{Kind: config.StorageRedis, RedisURL: "not-a-url"})
	require.Error(t, err)
}
