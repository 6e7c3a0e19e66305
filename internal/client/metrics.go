package client

import "github.com/prometheus/client_golang/prometheus"

// Исходы запроса для метки outcome.
const (
	outcomeOK              = "ok"
	outcomeAPIError        = "api_error"
	outcomeConnectionError = "connection_error"
)

// Metrics — счётчики клиента. Нулевой указатель допустим: все методы no-op.
type Metrics struct {
	requests           *prometheus.CounterVec
	refreshes          *prometheus.CounterVec
	retries            prometheus.Counter
	cooldownRejections *prometheus.CounterVec
}

// NewMetrics создаёт счётчики и регистрирует их в reg (nil — без регистрации).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modverse",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outgoing API requests by HTTP method and outcome.",
		}, []string{"method", "outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modverse",
			Subsystem: "client",
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by result (missing refresh token counts as failed).",
		}, []string{"result"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "modverse",
			Subsystem: "client",
			Name:      "retries_total",
			Help:      "Requests re-issued after a successful token refresh.",
		}),
		cooldownRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modverse",
			Subsystem: "client",
			Name:      "cooldown_rejections_total",
			Help:      "Calls rejected locally by a cooldown guard.",
		}, []string{"action"}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.refreshes, m.retries, m.cooldownRejections)
	}

	return m
}

func (m *Metrics) request(method, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) refresh(ok bool) {
	if m == nil {
		return
	}
	result := "failed"
	if ok {
		result = "ok"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) retry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// CooldownRejected учитывает локальный отказ cooldown для действия action.
func (m *Metrics) CooldownRejected(action string) {
	if m == nil {
		return
	}
	m.cooldownRejections.WithLabelValues(action).Inc()
}
