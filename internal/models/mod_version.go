package models

import "time"

type ModVersion struct {
	ID        uint64       `json:"id"`
	Version   string       `json:"version"`
	ChangeLog string       `json:"change_log"`
	Downloads uint64       `json:"downloads"`
	File      DownloadFile `json:"file"`
	CreatedAt time.Time    `json:"created_at"`
}

type CreateModVersionRequest struct {
	ModID     uint64 `json:"mod_id"`
	Version   string `json:"version"`
	ChangeLog string `json:"change_log"`
	FileID    uint64 `json:"file_id"`
}
