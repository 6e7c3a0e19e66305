package models

import (
	"net/url"
	"time"
)

type ModFavorite struct {
	ModID     uint64    `json:"mod_id"`
	Mod       ModSimple `json:"mod"`
	CreatedAt time.Time `json:"created_at"`
}

type ModFavoriteQuery struct {
	Paging
	Name   string
	GameID uint64
}

func (q ModFavoriteQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	setStr(v, "name", q.Name)
	setInt(v, "game_id", q.GameID)
	return v
}

// ModFavoriteRequest — тело добавления в избранное.
type ModFavoriteRequest struct {
	ModID uint64 `json:"mod_id"`
}
