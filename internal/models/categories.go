package models

import (
	"net/url"
	"time"
)

type Category struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryRequest — тело создания и обновления категории.
type CategoryRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type CategoryQuery struct {
	Paging
	Name   string
	Status string
}

func (q CategoryQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	setStr(v, "name", q.Name)
	setStr(v, "status", q.Status)
	return v
}
