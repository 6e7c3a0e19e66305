package client

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/modverse-client/internal/pkg/log"
	"github.com/pribylovaa/modverse-client/internal/tokenstore"
)

// Заголовки, которые клиент отправляет и читает.
const (
	HeaderAuthorization = "Authorization"
	HeaderRefreshToken  = "Refreshtoken"
	HeaderRequestID     = "X-Request-Id"
	HeaderUserAgent     = "User-Agent"
)

type ctxKey string

const (
	// CtxRequestID — внешний request_id (иначе генерируется uuid).
	CtxRequestID ctxKey = "request_id"

	ctxRefreshToken ctxKey = "refresh_token"
)

// RequestIDFrom возвращает request_id из контекста.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(CtxRequestID).(string)
	return rid
}

// withRefreshCall помечает запрос как вызов refresh: вместо access-токена
// в Authorization уходит refresh-токен, а ответ code=6 не запускает refresh повторно.
func withRefreshCall(ctx context.Context, refresh string) context.Context {
	return context.WithValue(ctx, ctxRefreshToken, refresh)
}

func isRefreshCall(ctx context.Context) bool {
	_, ok := ctx.Value(ctxRefreshToken).(string)
	return ok
}

// roundTripperFunc — адаптер функции к http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// withMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из контекста или новый uuid),
//   - User-Agent (если передан параметром).
func withMetadata(next http.RoundTripper, userAgent string) http.RoundTripper {
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		r = r.Clone(r.Context())

		if r.Header.Get(HeaderRequestID) == "" {
			rid := RequestIDFrom(r.Context())
			if rid == "" {
				rid = uuid.NewString()
			}
			r.Header.Set(HeaderRequestID, rid)
		}
		if userAgent != "" {
			r.Header.Set(HeaderUserAgent, userAgent)
		}

		return next.RoundTrip(r)
	})
}

// withBearer подставляет текущий токен: для обычных вызовов — access,
// для вызова refresh — refresh-токен из метки контекста.
// Токен читается на каждой попытке, поэтому повтор после refresh
// автоматически уходит с новым токеном.
func withBearer(next http.RoundTripper, tokens *tokenstore.Tokens) http.RoundTripper {
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		ctx := r.Context()

		var tok string
		if rt, ok := ctx.Value(ctxRefreshToken).(string); ok {
			tok = rt
		} else if tokens != nil {
			at, ok, err := tokens.Access(ctx)
			if err != nil {
				log.From(ctx).Warn("token_read_failed", slog.String("err", err.Error()))
			}
			if ok {
				tok = at
			}
		}

		r = r.Clone(ctx)
		if tok != "" {
			r.Header.Set(HeaderAuthorization, "Bearer "+tok)
		} else {
			r.Header.Del(HeaderAuthorization)
		}

		return next.RoundTrip(r)
	})
}

// withLogging — логирование исходящих запросов.
// Поведение:
//   - берёт X-Request-Id из запроса;
//   - прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись уровня Info: msg="http", status, dur.
//
// Безопасность: не логирует тело и заголовки с токенами.
func withLogging(next http.RoundTripper, base *slog.Logger) http.RoundTripper {
	if base == nil {
		base = slog.Default()
	}

	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		l := base.With(
			slog.String("request_id", r.Header.Get(HeaderRequestID)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		if isRefreshCall(r.Context()) {
			l = l.With(slog.Bool("refresh", true))
		}
		r = r.WithContext(log.Into(r.Context(), l))

		resp, err := next.RoundTrip(r)
		if err != nil {
			l.Warn("http",
				slog.String("err", err.Error()),
				slog.Duration("dur", time.Since(start)),
			)
			return nil, err
		}

		l.Info("http",
			slog.Int("status", resp.StatusCode),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, nil
	})
}

// withTimeout навешивает таймаут d на попытку, если у контекста ещё нет дедлайна.
//
// Контракт:
//  1. d <= 0 — контекст не модифицируется;
//  2. у ctx уже есть deadline — остаётся как есть;
//  3. иначе — context.WithTimeout(ctx, d); cancel обязан вызвать вызывающий.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d)
}
