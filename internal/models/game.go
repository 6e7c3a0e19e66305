package models

import (
	"net/url"
	"time"
)

type Game struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	LogoID      uint64      `json:"logo_id"`
	LogoFile    StorageFile `json:"logo_file"`
	ModNums     uint64      `json:"mod_nums"`
	Publishers  string      `json:"publishers"`
	Developers  string      `json:"developers"`
	ReleaseTime time.Time   `json:"release_time"`
}

type CreateGameRequest struct {
	Name        string    `json:"name"`
	LogoID      uint64    `json:"logo_id"`
	Publishers  string    `json:"publishers"`
	Developers  string    `json:"developers"`
	ReleaseTime time.Time `json:"release_time"`
}

type UpdateGameRequest struct {
	Name        string    `json:"name"`
	OldLogoID   uint64    `json:"old_logo_id"`
	NewLogoID   uint64    `json:"new_logo_id"`
	Publishers  string    `json:"publishers"`
	Developers  string    `json:"developers"`
	ReleaseTime time.Time `json:"release_time"`
}

type GameQuery struct {
	Paging
	Name       string
	Developers string
	Publishers string
}

func (q GameQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	setStr(v, "name", q.Name)
	setStr(v, "developers", q.Developers)
	setStr(v, "publishers", q.Publishers)
	return v
}
