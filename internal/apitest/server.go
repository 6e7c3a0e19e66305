// apitest — поддельный бэкенд платформы модов для тестов клиента.
//
// Повторяет поведение настоящего сервера в части аутентификации:
// HS256 JWT (id, role, exp), токены в заголовках ответа authorization и
// refreshtoken со схемой "Bearer ", 401 + code=6 для невалидного или
// истёкшего токена, refresh по GET auth/refresh_token/ с refresh-токеном
// в Authorization. Ресурсные маршруты задаются тестами через Route.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/modverse-client/internal/models"
)

// Значения, которые принимает сервер.
const (
	VerifyCode  = "123456"
	CaptchaCode = "7x9k"
	ResetToken  = "reset-token"
)

// HandlerFunc — обработчик ресурсного маршрута: HTTP-статус и data конверта.
// Ненулевой *Fail вместо data превращается в конверт ошибки.
type HandlerFunc func(r *http.Request) (int, any)

// Fail — ответ-ошибка для HandlerFunc.
type Fail struct {
	Code    models.Code
	Message string
}

// Recorded — запрос, который дошёл до сервера.
type Recorded struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

type account struct {
	id       uint64
	name     string
	email    string
	role     string
	status   string
	passHash []byte
}

// Server — поддельный бэкенд поверх httptest.Server.
type Server struct {
	// URL — базовый адрес API (с суффиксом /api).
	URL string

	srv        *httptest.Server
	api        chi.Router
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu       sync.Mutex
	accounts map[string]*account
	nextID   uint64
	requests []Recorded
	captchas map[string]string

	refreshGate chan struct{}
	refreshFail atomic.Bool

	refreshCalls atomic.Int64
	rejected     atomic.Int64
	verifyCalls  atomic.Int64
	resetCalls   atomic.Int64
}

// New поднимает сервер и останавливает его по завершении теста.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:     []byte("test-secret"),
		accessTTL:  time.Hour,
		refreshTTL: 24 * time.Hour,
		accounts:   make(map[string]*account),
		captchas:   make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(s.record)

	s.api = r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/login/admin", s.loginAdmin)
		r.Post("/auth/register", s.register)
		r.Post("/auth/verify", s.sendVerify)
		r.Post("/auth/send_reset_email", s.sendResetEmail)
		r.Get("/auth/refresh_token", s.refresh)
		r.Put("/auth/reset_password", s.resetPassword)
		r.Get("/captcha", s.captcha)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/is_login", s.isLogin)
			r.Put("/auth/update_password", s.updatePassword)
			r.Get("/user/my/profile", s.myProfile)
		})
	})

	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL + "/api"
	t.Cleanup(s.srv.Close)

	return s
}

// Close останавливает сервер досрочно (для проверок ConnectionError).
func (s *Server) Close() { s.srv.Close() }

// SetAccessTTL задаёт срок жизни выдаваемых access-токенов.
func (s *Server) SetAccessTTL(d time.Duration) { s.accessTTL = d }

// AddUser заводит пользователя и возвращает его id.
func (s *Server) AddUser(name, email, password, role string) uint64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: bcrypt: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.accounts[name] = &account{
		id:       s.nextID,
		name:     name,
		email:    email,
		role:     role,
		status:   models.StatusEnable,
		passHash: hash,
	}

	return s.nextID
}

// Mint выпускает токен с заданным сроком жизни (ttl < 0 — уже истёкший).
func (s *Server) Mint(id uint64, role string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"id":   fmt.Sprint(id),
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
		"jti":  uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign: %v", err))
	}

	return signed
}

// Route регистрирует ресурсный маршрут под /api. Защищённый маршрут
// требует валидный access-токен.
func (s *Server) Route(method, pattern string, protected bool, h HandlerFunc) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, data := h(r)
		if f, ok := data.(*Fail); ok {
			writeJSON(w, status, envelope(f.Code, nil, f.Message))
			return
		}
		writeJSON(w, status, envelope(models.CodeOK, data, ""))
	}))
	if protected {
		handler = s.authenticate(handler)
	}

	s.api.Method(method, "/"+strings.TrimLeft(pattern, "/"), handler)
}

// HoldRefresh задерживает ответы refresh до вызова release.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})

	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// FailRefresh заставляет refresh отвечать 401 + code=6.
func (s *Server) FailRefresh(v bool) { s.refreshFail.Store(v) }

// RefreshCalls — число запросов к refresh.
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// Rejected — число запросов, отклонённых проверкой токена.
func (s *Server) Rejected() int64 { return s.rejected.Load() }

// VerifyCalls — число запросов на отправку кода подтверждения.
func (s *Server) VerifyCalls() int64 { return s.verifyCalls.Load() }

// ResetEmailCalls — число запросов на отправку письма сброса пароля.
func (s *Server) ResetEmailCalls() int64 { return s.resetCalls.Load() }

// Requests возвращает копию журнала запросов.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Recorded(nil), s.requests...)
}

// Last возвращает последний запрос.
func (s *Server) Last() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

// CountPath — число запросов к пути (без /api и завершающего слэша).
func (s *Server) CountPath(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		path := strings.TrimPrefix(r.URL.Path, "/api")
		if len(path) > 1 {
			path = strings.TrimSuffix(path, "/")
		}

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func envelope(code models.Code, data any, msg string) map[string]any {
	var e any
	if msg != "" {
		e = msg
	}

	return map[string]any{"code": code, "data": data, "error": e}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFail(w http.ResponseWriter, status int, code models.Code, msg string) {
	writeJSON(w, status, envelope(code, nil, msg))
}
