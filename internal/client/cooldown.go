package client

import (
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apierrors "github.com/pribylovaa/modverse-client/internal/errors"
	"github.com/pribylovaa/modverse-client/internal/models"
)

// DefaultCooldown — окно для отправки кода подтверждения и письма сброса пароля.
const DefaultCooldown = 60 * time.Second

// Cooldown не пропускает повторный вызов действия, пока не истекло окно
// с момента предыдущего пропущенного вызова. Окно отсчитывается от начала
// пропущенного вызова, независимо от его исхода.
//
// Начало — момент выдачи вызова, а не получения ответа: долгий ответ
// съедает часть окна. Окно живёт в памяти процесса.
type Cooldown struct {
	mu  sync.Mutex
	lim *rate.Limiter
	now func() time.Time
}

// NewCooldown создаёт guard с окном window (<= 0 — DefaultCooldown).
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultCooldown
	}

	return &Cooldown{
		lim: rate.NewLimiter(rate.Every(window), 1),
		now: time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (c *Cooldown) WithClock(now func() time.Time) *Cooldown {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()

	return c
}

// Allow сообщает, можно ли выполнить действие сейчас, и если да —
// открывает новое окно.
func (c *Cooldown) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lim.AllowN(c.now(), 1)
}

// RateLimited — конверт, который вызывающий получает вместо сетевого ответа
// при отказе cooldown.
func RateLimited() *models.Raw {
	return &models.Raw{
		Code:  models.CodeRateLimited,
		Data:  json.RawMessage("null"),
		Error: apierrors.Message(models.CodeRateLimited),
	}
}
