package models

import "time"

// StorageFile — загруженный файл (полная форма).
type StorageFile struct {
	ID        uint64    `json:"id"`
	FileKey   string    `json:"file_key,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	FileSize  int64     `json:"file_size,omitempty"`
	MimeType  string    `json:"mime_type,omitempty"`
	IsTemp    bool      `json:"is_temp,omitempty"`
	URL       string    `json:"url"`
	UserID    uint64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// DownloadFile — файл версии мода.
type DownloadFile struct {
	ID       uint64 `json:"id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	URL      string `json:"url"`
}

// Captcha — картинка капчи для формы входа.
type Captcha struct {
	CaptchaID string `json:"captcha_id"`
	Image     string `json:"captcha"` // data:image/png;base64,...
}

// Назначение загружаемого файла (параметр type у upload/file).
const (
	UploadModFile    = "mod_file"
	UploadModCover   = "mod_cover"
	UploadGameLogo   = "game_logo"
	UploadUserAvatar = "user_avatar"
)

// UploadResult — ответ upload/file.
type UploadResult struct {
	FileID uint64 `json:"file_id"`
}
