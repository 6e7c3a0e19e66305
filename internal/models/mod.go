package models

import (
	"net/url"
	"time"
)

// Mod — мод с автором и игрой.
type Mod struct {
	ID             uint64      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Content        string      `json:"content"`
	Category       string      `json:"category"`
	CoverID        uint64      `json:"cover_id,omitempty"`
	CoverFile      StorageFile `json:"cover_file"`
	User           User        `json:"user"`
	Game           Game        `json:"game"`
	Likes          uint64      `json:"likes"`
	TotalDownloads uint64      `json:"total_downloads"`
	Status         string      `json:"status"`
	LastUpdate     time.Time   `json:"last_update"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ModSimple — краткая карточка мода (профиль автора, избранное).
type ModSimple struct {
	ID             uint64      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Category       string      `json:"category"`
	CoverID        uint64      `json:"cover_id"`
	CoverFile      StorageFile `json:"cover_file"`
	Game           Game        `json:"game"`
	Likes          uint64      `json:"likes"`
	TotalDownloads uint64      `json:"total_downloads"`
	LastUpdate     time.Time   `json:"last_update"`
}

type CreateModRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	GameID      uint64 `json:"game_id"`
	CoverID     uint64 `json:"cover_id"`
	Version     string `json:"version"`
	FileID      uint64 `json:"file_id"`
}

type UpdateModRequest struct {
	Description string `json:"description"`
	Content     string `json:"content"`
	Status      string `json:"status"`
}

// ModQuery — фильтр каталога модов. Category повторяется в query.
type ModQuery struct {
	Paging
	Category []string
	Name     string
	GameID   uint64
	UserID   uint64
	UserName string
	Status   string
}

func (q ModQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	for _, c := range q.Category {
		if c != "" {
			v.Add("category", c)
		}
	}
	setStr(v, "name", q.Name)
	setInt(v, "gameID", q.GameID)
	setInt(v, "userID", q.UserID)
	setStr(v, "userName", q.UserName)
	setStr(v, "status", q.Status)
	return v
}
