package watcher

import (
	"fmt"
	"syncwatch/internal/config"
	"syncwatch/internal/logger"
	"syncwatch/internal/model"

	"go.uber.org/zap"
)

const (
	AnyAction        = "*"
	DefaultEventType = model.EventItemFinished
)

// Watcher binds a folder/event/action/path filter to a command template. It
// is immutable after New; the pattern is compiled there, once.
type Watcher struct {
	Name      string
	Folder    string
	Action    string
	EventType string
	Command   string
	pattern   Pattern
}

func New(cfg config.WatcherConfig) *Watcher {
	w := &Watcher{
		Name:      cfg.Name,
		Folder:    cfg.Folder,
		Action:    cfg.Action,
		EventType: cfg.EventType,
		Command:   cfg.Command,
		pattern:   CompilePattern(cfg.Pattern),
	}

	if w.Action == "" {
		w.Action = AnyAction
	}
	if w.EventType == "" {
		w.EventType = DefaultEventType
	}

	if err := w.pattern.Err(); err != nil {
		logger.Log.Error("watcher pattern does not compile, watcher will never match",
			zap.String("watcher", w.Name),
			zap.String("pattern", cfg.Pattern),
			zap.Error(err))
	}

	return w
}

// Load builds watchers in configuration order, naming unnamed ones by index.
func Load(cfgs []config.WatcherConfig) []*Watcher {
	watchers := make([]*Watcher, 0, len(cfgs))
	for i, cfg := range cfgs {
		if cfg.Name == "" {
			cfg.Name = fmt.Sprintf("watcher-%d", i)
		}
		watchers = append(watchers, New(cfg))
	}

	return watchers
}

func (w *Watcher) Pattern() Pattern {
	return w.pattern
}

func (w *Watcher) Valid() bool {
	return w.pattern.Err() == nil
}

func (w *Watcher) Matches(event model.Event) bool {
	if event.Folder != w.Folder {
		return false
	}

	if event.Type != w.EventType {
		return false
	}

	if w.Action != AnyAction && event.Action != w.Action {
		return false
	}

	return w.pattern.Match(event.Path)
}

// EventTypes returns the distinct event types of watchers in first-seen order.
func EventTypes(watchers []*Watcher) []string {
	seen := make(map[string]bool)
	var types []string
	for _, w := range watchers {
		if seen[w.EventType] {
			continue
		}
		seen[w.EventType] = true
		types = append(types, w.EventType)
	}

	return types
}
