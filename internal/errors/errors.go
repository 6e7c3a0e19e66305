// errors описывает таксономию ошибок клиента API:
//   - ConnectionError — ответ не получен (сеть, DNS, таймаут, отмена);
//   - APIError — ответ получен, но HTTP-статус не 2xx или в конверте ненулевой code.
//
// Вызывающий код различает их через errors.As, а конкретные коды
// сервера — через errors.Is с сентинелами ниже.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/pribylovaa/modverse-client/internal/models"
)

var (
	// ErrUnknown — сервер вернул code=1 или неизвестный код.
	ErrUnknown = errors.New("unknown error")

	// ErrNotFound — code=2, запрошенные данные не существуют.
	ErrNotFound = errors.New("data not found")

	// ErrEmailExists — code=3, e-mail уже зарегистрирован.
	ErrEmailExists = errors.New("email already exists")

	// ErrUserExists — code=4, имя пользователя занято.
	ErrUserExists = errors.New("username already exists")

	// ErrLoginFailed — code=5, неверная пара логин/пароль.
	ErrLoginFailed = errors.New("login failed")

	// ErrTokenExpired — code=6, access-токен истёк или невалиден.
	// Клиент обрабатывает его сам (refresh + повтор); наружу он попадает,
	// только если refresh не удался или повтор снова получил code=6.
	ErrTokenExpired = errors.New("access token expired")

	// ErrVerifyCodeInvalid — code=7, неверный код подтверждения/капча.
	ErrVerifyCodeInvalid = errors.New("verification code incorrect")

	// ErrLoginRepeat — code=8, повторный вход с уже действующим токеном.
	ErrLoginRepeat = errors.New("already logged in")

	// ErrOriginPassword — code=9, неверный текущий пароль при смене.
	ErrOriginPassword = errors.New("original password incorrect")

	// ErrUserDisabled — code=10, пользователь заблокирован.
	ErrUserDisabled = errors.New("user disabled")

	// ErrRateLimited — локальный cooldown отклонил запрос без обращения к сети.
	ErrRateLimited = errors.New("too many requests")
)

// sentinels — соответствие кода конверта сентинелу.
var sentinels = map[models.Code]error{
	models.CodeUnknown:           ErrUnknown,
	models.CodeDataNotExist:      ErrNotFound,
	models.CodeEmailExists:       ErrEmailExists,
	models.CodeUserExists:        ErrUserExists,
	models.CodeLoginFailed:       ErrLoginFailed,
	models.CodeTokenExpired:      ErrTokenExpired,
	models.CodeVerifyCodeInvalid: ErrVerifyCodeInvalid,
	models.CodeLoginRepeat:       ErrLoginRepeat,
	models.CodeOriginPassword:    ErrOriginPassword,
	models.CodeUserDisabled:      ErrUserDisabled,
	models.CodeRateLimited:       ErrRateLimited,
}

// APIError — прикладная ошибка: ответ получен, но он не успешный.
// Status == 0 означает, что HTTP-ответ был 2xx (или запроса не было вовсе,
// как у локального cooldown), а ошибка пришла только в конверте.
type APIError struct {
	Status  int
	Code    models.Code
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = Message(e.Code)
	}

	if e.Status != 0 {
		return fmt.Sprintf("api: status %d, code %d: %s", e.Status, e.Code, msg)
	}

	return fmt.Sprintf("api: code %d: %s", e.Code, msg)
}

// Is сопоставляет ошибку с сентинелом по коду конверта.
func (e *APIError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	if !ok {
		return target == ErrUnknown
	}

	return s == target
}

// ConnectionError — транспортная ошибка: ответ от сервера не получен.
type ConnectionError struct {
	Method string
	Path   string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Timeout сообщает, что запрос не уложился в дедлайн.
func (e *ConnectionError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// FromEnvelope превращает неуспешный конверт в *APIError; для code=0 — nil.
// Так локальный cooldown, 2xx с ненулевым кодом и HTTP-ошибки обрабатываются
// вызывающим кодом одинаково.
func FromEnvelope[T any](env *models.Envelope[T]) error {
	if env == nil || env.OK() {
		return nil
	}

	return &APIError{Code: env.Code, Message: env.Error}
}

// CodeOf извлекает код конверта из цепочки ошибок.
func CodeOf(err error) (models.Code, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Code, true
	}

	return 0, false
}

// Message — человекочитаемое описание кода; используется, когда сервер
// не прислал текст ошибки.
func Message(code models.Code) string {
	switch code {
	case models.CodeOK:
		return "ok"
	case models.CodeDataNotExist:
		return "data not found"
	case models.CodeEmailExists:
		return "email already exists"
	case models.CodeUserExists:
		return "username already exists"
	case models.CodeLoginFailed:
		return "wrong username or password"
	case models.CodeTokenExpired:
		return "session expired, please log in again"
	case models.CodeVerifyCodeInvalid:
		return "verification code incorrect"
	case models.CodeLoginRepeat:
		return "already logged in"
	case models.CodeOriginPassword:
		return "original password incorrect"
	case models.CodeUserDisabled:
		return "user disabled"
	case models.CodeRateLimited:
		return "please do not request codes too often"
	default:
		return "unknown error"
	}
}
