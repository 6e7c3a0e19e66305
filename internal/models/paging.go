package models

import (
	"net/url"
	"strconv"
)

// Направления сортировки.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DefaultPageSize — размер страницы, если вызывающий его не задал.
const DefaultPageSize = 10

// Paging — состояние пагинации/сортировки списка на стороне клиента.
type Paging struct {
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
}

// Normalize приводит страницу и размер к допустимым значениям.
func (p Paging) Normalize() Paging {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.Order != "" && p.Order != OrderAsc && p.Order != OrderDesc {
		p.Order = OrderDesc
	}

	return p
}

// TotalPages — число страниц для total записей (минимум 1).
func (p Paging) TotalPages(total int64) int {
	p = p.Normalize()
	if total <= 0 {
		return 1
	}

	size := int64(p.PageSize)
	return int((total + size - 1) / size)
}

// Next возвращает состояние следующей страницы; false — текущая последняя.
func (p Paging) Next(total int64) (Paging, bool) {
	p = p.Normalize()
	if p.Page >= p.TotalPages(total) {
		return p, false
	}

	p.Page++
	return p, true
}

// Prev возвращает состояние предыдущей страницы; false — текущая первая.
func (p Paging) Prev() (Paging, bool) {
	p = p.Normalize()
	if p.Page <= 1 {
		return p, false
	}

	p.Page--
	return p, true
}

// SortBy переключает сортировку: повторный выбор того же поля меняет
// направление, новое поле начинается с asc. Страница сбрасывается на первую.
func (p Paging) SortBy(field string) Paging {
	if p.Sort == field {
		if p.Order == OrderAsc {
			p.Order = OrderDesc
		} else {
			p.Order = OrderAsc
		}
	} else {
		p.Sort = field
		p.Order = OrderAsc
	}

	p.Page = 1
	return p
}

// encode добавляет параметры пагинации в v, пропуская нулевые поля.
func (p Paging) encode(v url.Values) {
	setInt(v, "page", p.Page)
	setInt(v, "page_size", p.PageSize)
	setStr(v, "sort", p.Sort)
	setStr(v, "order", p.Order)
}

// Values кодирует только пагинацию.
func (p Paging) Values() url.Values {
	v := url.Values{}
	p.encode(v)
	return v
}

func setStr(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt[N ~int | ~int64 | ~uint | ~uint64](v url.Values, key string, val N) {
	if val != 0 {
		v.Set(key, strconv.FormatInt(int64(val), 10))
	}
}
