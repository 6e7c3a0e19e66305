package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/modverse-client/internal/pkg/log"
)

const refreshKey = "refresh"

// Refresh обновляет пару токенов. Одновременные вызовы объединяются в один
// сетевой запрос, и все они получают его результат. Возвращает true, если
// сервер ответил code=0 (новые токены сохранены из заголовков ответа).
//
// Общий запрос выполняется в контексте, отвязанном от отмены первого
// вызывающего: отмена ctx прерывает только ожидание этого вызывающего.
func (c *Client) Refresh(ctx context.Context) (bool, error) {
	lg := log.From(ctx)

	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		ok, _ := res.Val.(bool)
		if res.Shared {
			lg.Debug("token_refresh_joined", slog.Bool("ok", ok))
		}
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (c *Client) refresh(ctx context.Context) (bool, error) {
	const op = "client.refresh"

	start := time.Now()
	ctx = log.With(ctx, slog.String("op", op))
	lg := log.From(ctx)

	rt, ok, err := c.tokens.Refresh(ctx)
	if err != nil {
		c.metrics.refresh(false)
		lg.Error("token_refresh_failed", slog.String("err", err.Error()))
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		c.metrics.refresh(false)
		lg.Info("token_refresh_skipped", slog.String("reason", "no_refresh_token"))
		return false, nil
	}

	lg.Info("token_refresh_started")

	env, err := c.send(withRefreshCall(ctx, rt), Request{Method: http.MethodGet, Path: RefreshPath}, nil, "")
	if err != nil {
		c.metrics.refresh(false)
		lg.Warn("token_refresh_failed",
			slog.String("err", err.Error()),
			slog.Duration("dur", time.Since(start)),
		)
		return false, fmt.Errorf("%s: %w", op, err)
	}

	ok = env.OK()
	c.metrics.refresh(ok)
	lg.Info("token_refresh_finished",
		slog.Bool("ok", ok),
		slog.Int("code", int(env.Code)),
		slog.Duration("dur", time.Since(start)),
	)

	return ok, nil
}
