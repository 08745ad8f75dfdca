package model

import (
	"time"

	"gorm.io/gorm"
)

type DispatchStatus string

const (
	StatusSuccess DispatchStatus = "SUCCESS"
	StatusFailed  DispatchStatus = "FAILED"
)

// DispatchResult is the outcome of running one watcher command for one event.
type DispatchResult struct {
	Watcher  string
	Event    Event
	Command  string
	ExitCode int
	Duration time.Duration
	Err      error
}

func (r DispatchResult) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

type History struct {
	gorm.Model
	Status       DispatchStatus `gorm:"not null" json:"status"`
	Watcher      string         `gorm:"not null;index" json:"watcher"`
	EventID      int64          `gorm:"not null" json:"event_id"`
	Folder       string         `json:"folder"`
	Path         string         `json:"path"`
	Command      string         `gorm:"not null" json:"command"`
	ExitCode     int            `json:"exit_code"`
	ErrMsg       string         `json:"err_msg"`
	DurationMS   int64          `json:"duration_ms"`
	DispatchedAt time.Time      `gorm:"not null" json:"dispatched_at"`
}
