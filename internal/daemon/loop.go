package daemon

import (
	"context"
	"errors"
	"syncwatch/internal/dispatch"
	"syncwatch/internal/logger"
	"syncwatch/internal/model"
	"syncwatch/internal/poller"
	"syncwatch/internal/watcher"

	"go.uber.org/zap"
)

type EventSource interface {
	Poll(ctx context.Context) ([]model.Event, error)
}

type Executor interface {
	Run(command string) (dispatch.Result, error)
}

type Recorder interface {
	Save(result model.DispatchResult) error
}

// Loop polls the event source and runs every matching watcher's command for
// each event, one at a time and in order.
type Loop struct {
	src      EventSource
	watchers []*watcher.Watcher
	exec     Executor
	recorder Recorder
	state    *State
}

func NewLoop(src EventSource, watchers []*watcher.Watcher, exec Executor, recorder Recorder) *Loop {
	return &Loop{
		src:      src,
		watchers: watchers,
		exec:     exec,
		recorder: recorder,
		state:    NewState(),
	}
}

// Run blocks until ctx is cancelled, returning nil, or until the event source
// fails fatally, returning that error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		events, err := l.src.Poll(ctx)
		if err != nil && !poller.IsFatal(err) && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
			return nil
		}

		l.state.RecordPoll(events, err)

		if err != nil {
			if poller.IsFatal(err) {
				return err
			}

			logger.Log.Warn("event poll failed",
				zap.Error(err))
			continue
		}

		for _, event := range events {
			if ctx.Err() != nil {
				return nil
			}
			l.handleEvent(event)
		}
	}
}

func (l *Loop) handleEvent(event model.Event) {
	logger.Log.Debug("event received",
		zap.Int64("id", event.ID),
		zap.String("type", event.Type),
		zap.String("folder", event.Folder),
		zap.String("path", event.Path),
		zap.String("action", event.Action))

	for _, w := range l.watchers {
		if !w.Matches(event) {
			continue
		}

		l.record(l.dispatch(w, event))
	}
}

func (l *Loop) dispatch(w *watcher.Watcher, event model.Event) model.DispatchResult {
	command := dispatch.Expand(w.Command, event)

	logger.Log.Info("running command",
		zap.String("watcher", w.Name),
		zap.Int64("event", event.ID),
		zap.String("path", event.Path),
		zap.String("command", command))

	res, err := l.exec.Run(command)
	result := model.DispatchResult{
		Watcher:  w.Name,
		Event:    event,
		Command:  command,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Err:      err,
	}

	switch {
	case err != nil:
		logger.Log.Error("failed to run command",
			zap.String("watcher", w.Name),
			zap.String("command", command),
			zap.Error(err))
	case res.ExitCode != 0:
		logger.Log.Warn("command exited with non-zero status",
			zap.String("watcher", w.Name),
			zap.Int("exit_code", res.ExitCode),
			zap.Duration("duration", res.Duration))
	default:
		logger.Log.Debug("command finished",
			zap.String("watcher", w.Name),
			zap.Duration("duration", res.Duration))
	}

	return result
}

func (l *Loop) record(result model.DispatchResult) {
	l.state.RecordDispatch(result)

	if l.recorder == nil {
		return
	}

	if err := l.recorder.Save(result); err != nil {
		logger.Log.Warn("failed to save history",
			zap.Error(err))
	}
}

func (l *Loop) Watchers() []*watcher.Watcher {
	return l.watchers
}

func (l *Loop) Snapshot() model.StatusSnapshot {
	snap := l.state.Snapshot()
	for _, w := range l.watchers {
		snap.Watchers = append(snap.Watchers, w.Name)
	}

	return snap
}
