package daemon

import (
	"sync"
	"syncwatch/internal/model"
	"time"
)

type State struct {
	mu           sync.RWMutex
	StartedAt    time.Time
	Polls        int
	PollErrors   int
	Events       int
	Dispatched   int
	Failed       int
	LastEventID  int64
	LastDispatch *time.Time
}

func NewState() *State {
	return &State{StartedAt: time.Now()}
}

func (s *State) RecordPoll(events []model.Event, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Polls++
	if err != nil {
		s.PollErrors++
		return
	}

	s.Events += len(events)
	if n := len(events); n > 0 {
		s.LastEventID = events[n-1].ID
	}
}

func (s *State) RecordDispatch(result model.DispatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastDispatch = new(time.Now())
	s.Dispatched++
	if result.Failed() {
		s.Failed++
	}
}

func (s *State) Snapshot() model.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.StatusSnapshot{
		StartedAt:    s.StartedAt,
		Polls:        s.Polls,
		PollErrors:   s.PollErrors,
		Events:       s.Events,
		Dispatched:   s.Dispatched,
		Failed:       s.Failed,
		LastEventID:  s.LastEventID,
		LastDispatch: s.LastDispatch,
	}
}
