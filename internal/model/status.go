package model

import "time"

type StatusSnapshot struct {
	StartedAt    time.Time  `json:"started_at"`
	Watermark    *int64     `json:"watermark"`
	Polls        int        `json:"polls"`
	PollErrors   int        `json:"poll_errors"`
	Events       int        `json:"events"`
	Dispatched   int        `json:"dispatched"`
	Failed       int        `json:"failed"`
	LastEventID  int64      `json:"last_event_id"`
	LastDispatch *time.Time `json:"last_dispatch"`
	Watchers     []string   `json:"watchers"`
}
