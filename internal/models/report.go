package models

import (
	"net/url"
	"time"
)

// Типы и статусы жалоб.
const (
	ReportTypeMod     = "mod"
	ReportTypeComment = "comment"

	ReportPending   = "pending"
	ReportProcessed = "processed"
	ReportRejected  = "rejected"
)

type Report struct {
	ID           uint64    `json:"id"`
	Type         string    `json:"type"`
	Target       uint64    `json:"target"`
	Reporter     User      `json:"reporter"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	AdminComment string    `json:"admin_comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateReportRequest struct {
	Type   string `json:"type"`
	Target uint64 `json:"target"`
	Reason string `json:"reason"`
}

type UpdateReportRequest struct {
	Status       string `json:"status"`
	AdminComment string `json:"admin_comment"`
}

type ReportQuery struct {
	Paging
	Type      string
	Status    string
	Target    uint64
	Reporter  string
	Reason    string
	StartTime *time.Time
	EndTime   *time.Time
}

func (q ReportQuery) Values() url.Values {
	v := url.Values{}
	q.Paging.encode(v)
	setStr(v, "type", q.Type)
	setStr(v, "status", q.Status)
	setInt(v, "target", q.Target)
	setStr(v, "reporter", q.Reporter)
	setStr(v, "reason", q.Reason)
	if q.StartTime != nil {
		v.Set("startTime", q.StartTime.UTC().Format(time.RFC3339))
	}
	if q.EndTime != nil {
		v.Set("endTime", q.EndTime.UTC().Format(time.RFC3339))
	}
	return v
}
