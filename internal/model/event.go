package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const EventItemFinished = "ItemFinished"

// Event is one entry of the remote /rest/events stream.
type Event struct {
	ID        int64
	Type      string
	DataType  string
	Folder    string
	Path      string
	Action    string
	Timestamp string
}

type rawEvent struct {
	ID   *int64          `json:"id"`
	Type string          `json:"type"`
	Time string          `json:"time"`
	Data json.RawMessage `json:"data"`
}

type rawEventData struct {
	Folder string  `json:"folder"`
	Type   string  `json:"type"`
	Action string  `json:"action"`
	Item   *string `json:"item"`
	Path   *string `json:"path"`
}

// ParseEvent decodes one array item of an events response. A data payload that
// is not an object leaves the file fields empty; a missing id is an error since
// the event could not take part in watermarking.
func ParseEvent(b []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(b, &raw); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}

	if raw.ID == nil {
		return Event{}, fmt.Errorf("event has no id")
	}

	event := Event{
		ID:        *raw.ID,
		Type:      raw.Type,
		Timestamp: raw.Time,
	}

	var data rawEventData
	if len(raw.Data) > 0 && json.Unmarshal(raw.Data, &data) == nil {
		event.Folder = data.Folder
		event.DataType = data.Type
		event.Action = data.Action

		// older releases report the file as "path", newer ones as "item"
		switch {
		case data.Item != nil:
			event.Path = *data.Item
		case data.Path != nil:
			event.Path = *data.Path
		}
	}

	return event, nil
}

func (e Event) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.Timestamp)
}
