// models описывает транспортные модели REST API платформы модов:
// конверт ответа, коды результата, пагинацию и DTO ресурсов.
package models

import "encoding/json"

// Code — код результата в конверте ответа.
type Code int

// Коды, которые возвращает бэкенд.
const (
	CodeOK                Code = 0
	CodeUnknown           Code = 1
	CodeDataNotExist      Code = 2
	CodeEmailExists       Code = 3
	CodeUserExists        Code = 4
	CodeLoginFailed       Code = 5
	CodeTokenExpired      Code = 6 // запускает refresh + повтор запроса
	CodeVerifyCodeInvalid Code = 7
	CodeLoginRepeat       Code = 8
	CodeOriginPassword    Code = 9
	CodeUserDisabled      Code = 10
)

// Локальные коды клиента. Сервер их не присылает (его коды неотрицательные).
const (
	// CodeRateLimited — запрос отклонён локальным cooldown без обращения к сети.
	CodeRateLimited Code = -1
)

// Envelope — конверт любого ответа API: {code, data, error}.
type Envelope[T any] struct {
	Code  Code   `json:"code"`
	Data  T      `json:"data"`
	Error string `json:"error"`
}

// OK сообщает, что сервер вернул код успеха.
func (e *Envelope[T]) OK() bool {
	return e != nil && e.Code == CodeOK
}

// Raw — конверт с неразобранным data; так его отдаёт клиент до типизации.
type Raw = Envelope[json.RawMessage]

// Decode типизирует data сырого конверта.
// Пустой или null data оставляет нулевое значение T.
func Decode[T any](raw *Raw) (*Envelope[T], error) {
	out := &Envelope[T]{Code: raw.Code, Error: raw.Error}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return out, nil
	}

	if err := json.Unmarshal(raw.Data, &out.Data); err != nil {
		return nil, err
	}

	return out, nil
}

// List — страница списка ресурса.
type List[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}
