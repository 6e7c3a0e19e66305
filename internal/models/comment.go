package models

import (
	"net/url"
	"time"
)

// Comment — комментарий к моду с деревом ответов.
type Comment struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	Likes     uint64    `json:"likes"`
	User      User      `json:"user"`
	Replies   []Comment `json:"replies"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest; ParentID == 0 — корневой комментарий.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ModID    uint64 `json:"mod_id"`
	ParentID uint64 `json:"parent_id"`
}

// CommentQuery — фильтр всех комментариев (админка).
type CommentQuery struct {
	Paging
	Content  string
	UserName string
}

func (q CommentQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	setStr(v, "content", q.Content)
	setStr(v, "username", q.UserName)
	return v
}
