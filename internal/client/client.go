// client — HTTP-клиент REST API платформы модов.
//
// Клиент подставляет bearer-токен, разворачивает конверт {code, data, error}
// и прозрачно восстанавливается после истечения access-токена: ответ с
// code=6 запускает единственный на процесс refresh (single-flight), после
// успеха исходный запрос повторяется ровно один раз. Неудачный refresh —
// сигнал выхода: токены и профиль сбрасываются, вызывающий получает
// исходную ошибку.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	apierrors "github.com/pribylovaa/modverse-client/internal/errors"
	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/pkg/log"
	"github.com/pribylovaa/modverse-client/internal/tokenstore"
)

const (
	// DefaultTimeout — таймаут одной попытки запроса.
	DefaultTimeout = 10 * time.Second

	// RefreshPath — эндпоинт обновления пары токенов.
	RefreshPath = "auth/refresh_token/"

	maxBodySize = 32 << 20
)

// AuthState — процессное состояние входа, которое клиент обновляет
// по итогам refresh.
type AuthState interface {
	SetLoggedIn(v bool)
	Logout(ctx context.Context) error
}

// Options — параметры клиента.
type Options struct {
	BaseURL    string
	Timeout    time.Duration // 0 — DefaultTimeout, < 0 — без таймаута
	UserAgent  string
	Tokens     *tokenstore.Tokens
	Session    AuthState
	Logger     *slog.Logger
	Metrics    *Metrics
	HTTPClient *http.Client // транспорт этого клиента оборачивается цепочкой клиента
}

// Request — описание одного вызова API.
// Path задаётся относительно BaseURL ("auth/login/", "/mod/1").
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body кодируется в JSON один раз и переиспользуется при повторе.
	Body any

	// RawBody и ContentType — готовое тело (например, multipart);
	// если ContentType задан, Body игнорируется.
	RawBody     []byte
	ContentType string
}

// Client — клиент API. Безопасен для конкурентного использования.
type Client struct {
	base    *url.URL
	hc      *http.Client
	timeout time.Duration
	tokens  *tokenstore.Tokens
	session AuthState
	log     *slog.Logger
	metrics *Metrics

	refreshGroup singleflight.Group
}

// New создаёт клиент.
func New(opts Options) (*Client, error) {
	const op = "client.New"

	if opts.Tokens == nil {
		return nil, fmt.Errorf("%s: tokens store is required", op)
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%s: base url %q: scheme must be http or https", op, opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		cp := *opts.HTTPClient
		hc = &cp
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = withMetadata(withLogging(withBearer(next, opts.Tokens), opts.Logger), opts.UserAgent)

	return &Client{
		base:    base,
		hc:      hc,
		timeout: opts.Timeout,
		tokens:  opts.Tokens,
		session: opts.Session,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Tokens возвращает хранилище токенов клиента.
func (c *Client) Tokens() *tokenstore.Tokens { return c.tokens }

// Metrics возвращает счётчики клиента (может быть nil).
func (c *Client) Metrics() *Metrics { return c.metrics }

// Do выполняет запрос и возвращает конверт ответа.
//
//   - 2xx — конверт возвращается без ошибки, даже если code != 0
//     (см. apierrors.FromEnvelope);
//   - не 2xx — *apierrors.APIError; code=6 запускает refresh и один повтор;
//   - ответ не получен — *apierrors.ConnectionError, без повторов.
func (c *Client) Do(ctx context.Context, r Request) (*models.Raw, error) {
	const op = "client.Do"

	body, contentType, err := encodeBody(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	env, err := c.send(ctx, r, body, contentType)
	if err == nil {
		return env, nil
	}
	if isRefreshCall(ctx) || !isTokenExpired(err) {
		return nil, err
	}

	ctx = log.With(ctx, slog.String("op", op), slog.String("path", r.Path))
	lg := log.From(ctx)

	ok, rerr := c.Refresh(ctx)
	if rerr != nil && ctx.Err() != nil {
		// вызывающий сдался сам; общий refresh продолжается для остальных.
		return nil, err
	}
	if rerr != nil || !ok {
		attrs := []any{slog.String("reason", "refresh_failed")}
		if rerr != nil {
			attrs = append(attrs, slog.String("err", rerr.Error()))
		}
		lg.Warn("session_logout", attrs...)
		c.logout(ctx)
		return nil, err
	}

	if c.session != nil {
		c.session.SetLoggedIn(true)
	}

	c.metrics.retry()
	lg.Info("request_retry")

	return c.send(ctx, r, body, contentType)
}

// Call выполняет запрос и типизирует data ответа.
func Call[T any](ctx context.Context, c *Client, r Request) (*models.Envelope[T], error) {
	const op = "client.Call"

	raw, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}

	env, err := models.Decode[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %s: decode data: %w", op, r.Method, r.Path, err)
	}

	return env, nil
}

// send — одна попытка: таймаут, транспорт, сохранение токенов, разбор конверта.
func (c *Client) send(ctx context.Context, r Request, body []byte, contentType string) (*models.Raw, error) {
	const op = "client.send"

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	target, err := c.url(r)
	if err != nil {
		return nil, fmt.Errorf("%s: path %q: %w", op, r.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.metrics.request(method, outcomeConnectionError)
		return nil, &apierrors.ConnectionError{Method: method, Path: r.Path, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.request(method, outcomeConnectionError)
		return nil, &apierrors.ConnectionError{Method: method, Path: r.Path, Err: err}
	}

	env, decErr := decodeEnvelope(data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.request(method, outcomeAPIError)

		ae := &apierrors.APIError{Status: resp.StatusCode, Code: models.CodeUnknown, Message: http.StatusText(resp.StatusCode)}
		if decErr == nil && env.Code != models.CodeOK {
			ae.Code = env.Code
			ae.Message = env.Error
		}
		return nil, ae
	}

	if decErr != nil {
		c.metrics.request(method, outcomeAPIError)
		return nil, &apierrors.APIError{
			Status:  resp.StatusCode,
			Code:    models.CodeUnknown,
			Message: fmt.Sprintf("malformed response: %v", decErr),
		}
	}

	c.persistTokens(ctx, resp.Header)
	c.metrics.request(method, outcomeOK)

	return env, nil
}

// persistTokens сохраняет токены, если ответ их принёс.
// Последний пришедший ответ побеждает.
func (c *Client) persistTokens(ctx context.Context, h http.Header) {
	lg := log.From(ctx)

	if v := tokenstore.StripBearer(h.Get(HeaderAuthorization)); v != "" {
		if err := c.tokens.SetAccess(ctx, v); err != nil {
			lg.Error("token_persist_failed", slog.String("key", tokenstore.KeyAccessToken), slog.String("err", err.Error()))
		}
	}
	if v := tokenstore.StripBearer(h.Get(HeaderRefreshToken)); v != "" {
		if err := c.tokens.SetRefresh(ctx, v); err != nil {
			lg.Error("token_persist_failed", slog.String("key", tokenstore.KeyRefreshToken), slog.String("err", err.Error()))
		}
	}
}

func (c *Client) logout(ctx context.Context) {
	if c.session != nil {
		_ = c.session.Logout(ctx)
		return
	}

	if err := c.tokens.Clear(ctx); err != nil {
		log.From(ctx).Error("token_clear_failed", slog.String("err", err.Error()))
	}
}

// url строит адрес запроса. Path уже экранирован вызывающим
// (url.PathEscape для пользовательских сегментов).
func (c *Client) url(r Request) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(r.Path, "/"))
	if err != nil {
		return "", err
	}

	u := c.base.ResolveReference(ref)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	return u.String(), nil
}

func encodeBody(r Request) ([]byte, string, error) {
	if r.ContentType != "" {
		return r.RawBody, r.ContentType, nil
	}
	if r.Body == nil {
		return nil, "", nil
	}

	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}

	return b, "application/json", nil
}

// decodeEnvelope разбирает конверт; пустое тело — успешный конверт без data.
func decodeEnvelope(data []byte) (*models.Raw, error) {
	env := &models.Raw{}
	if len(bytes.TrimSpace(data)) == 0 {
		return env, nil
	}

	if err := json.Unmarshal(data, env); err != nil {
		return nil, err
	}

	return env, nil
}

func isTokenExpired(err error) bool {
	var ae *apierrors.APIError
	return errors.As(err, &ae) && ae.Status != 0 && ae.Code == models.CodeTokenExpired
}

// unwrapURLError снимает обёртку *url.Error, чтобы в ConnectionError
// не дублировались метод и URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}

	return err
}
