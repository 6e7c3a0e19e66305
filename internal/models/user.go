package models

import (
	"net/url"
	"time"
)

// Роли и статусы пользователя.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusEnable  = "enable"
	StatusDisable = "disable"
	StatusPending = "pending"
)

type UserProfile struct {
	ID          uint64      `json:"id"`
	AvatarID    uint64      `json:"avatar_id"`
	AvatarFile  StorageFile `json:"avatar_file"`
	Description string      `json:"description"`
}

// User — публичный профиль пользователя.
type User struct {
	ID          uint64      `json:"id"`
	UserName    string      `json:"user_name"`
	Role        string      `json:"role"`
	Status      string      `json:"status,omitempty"`
	Email       string      `json:"email,omitempty"`
	LastLogin   time.Time   `json:"last_login,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UserProfile UserProfile `json:"user_profile"`
}

// IsAdmin — пользователь с ролью администратора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserWithMods — профиль вместе с опубликованными модами.
type UserWithMods struct {
	User
	Mods []ModSimple `json:"mod"`
}

type UpdateUserProfileRequest struct {
	OldAvatarID uint64 `json:"old_avatar_id"`
	NewAvatarID uint64 `json:"new_avatar_id"`
	Description string `json:"description"`
}

// UpdateUserStateRequest — смена роли/статуса (админка).
type UpdateUserStateRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UserQuery — фильтр списка пользователей (админка).
type UserQuery struct {
	Paging
	Username string
	Role     string
	Status   string
	Email    string
}

func (q UserQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	setStr(v, "username", q.Username)
	setStr(v, "role", q.Role)
	setStr(v, "status", q.Status)
	setStr(v, "email", q.Email)
	return v
}
