package daemon

import (
	"context"
	"errors"
	"fmt"
	"syncwatch/internal/config"
	"syncwatch/internal/dispatch"
	"syncwatch/internal/model"
	"syncwatch/internal/poller"
	"syncwatch/internal/watcher"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pollStep struct {
	events []model.Event
	err    error
}

// fakeSource replays steps, then cancels the loop.
type fakeSource struct {
	steps  []pollStep
	calls  int
	cancel context.CancelFunc
}

func (f *fakeSource) Poll(ctx context.Context) ([]model.Event, error) {
	if f.calls >= len(f.steps) {
		f.cancel()
		return nil, ctx.Err()
	}

	step := f.steps[f.calls]
	f.calls++
	return step.events, step.err
}

type fakeExecutor struct {
	commands []string
	failOn   map[string]error
	exitOn   map[string]int
	onRun    func(command string)
}

func (f *fakeExecutor) Run(command string) (dispatch.Result, error) {
	f.commands = append(f.commands, command)
	if f.onRun != nil {
		f.onRun(command)
	}
	if err := f.failOn[command]; err != nil {
		return dispatch.Result{}, err
	}
	return dispatch.Result{ExitCode: f.exitOn[command]}, nil
}

type fakeRecorder struct {
	results []model.DispatchResult
	err     error
}

func (f *fakeRecorder) Save(result model.DispatchResult) error {
	f.results = append(f.results, result)
	return f.err
}

func finished(id int64, folder, path string) model.Event {
	return model.Event{ID: id, Type: "ItemFinished", Folder: folder, Path: path, Action: "update"}
}

func testWatchers() []*watcher.Watcher {
	return watcher.Load([]config.WatcherConfig{
		{Name: "thumbs", Folder: "photos", Pattern: `\.jpe?g$`, Command: "thumb ${path} ${id}"},
		{Name: "backup", Folder: "photos", Pattern: `.`, Command: "backup ${folder}/${path}"},
		{Name: "docs", Folder: "docs", Pattern: `\.md$`, Command: "render ${path}"},
	})
}

func runLoop(t *testing.T, steps []pollStep, exec *fakeExecutor, rec *fakeRecorder) (*Loop, error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recorder Recorder
	if rec != nil {
		recorder = rec
	}

	src := &fakeSource{steps: steps, cancel: cancel}
	loop := NewLoop(src, testWatchers(), exec, recorder)
	return loop, loop.Run(ctx)
}

func TestLoop_DispatchesEveryMatchInOrder(t *testing.T) {
	exec := &fakeExecutor{}
	rec := &fakeRecorder{}

	steps := []pollStep{
		{events: []model.Event{
			finished(1, "photos", "a.jpg"),
			finished(2, "docs", "readme.md"),
		}},
		{events: []model.Event{
			finished(3, "photos", "b.png"),
			finished(4, "music", "song.mp3"),
		}},
	}

	loop, err := runLoop(t, steps, exec, rec)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"thumb a.jpg 1",
		"backup photos/a.jpg",
		"render readme.md",
		"backup photos/b.png",
	}, exec.commands)

	require.Len(t, rec.results, 4)
	assert.Equal(t, "thumbs", rec.results[0].Watcher)
	assert.Equal(t, int64(1), rec.results[0].Event.ID)

	snap := loop.Snapshot()
	assert.Equal(t, 2, snap.Polls)
	assert.Equal(t, 4, snap.Events)
	assert.Equal(t, 4, snap.Dispatched)
	assert.Equal(t, 0, snap.Failed)
	assert.Equal(t, int64(4), snap.LastEventID)
	assert.Equal(t, []string{"thumbs", "backup", "docs"}, snap.Watchers)
}

func TestLoop_FatalErrorStops(t *testing.T) {
	exec := &fakeExecutor{}
	fatal := fmt.Errorf("%w: 401 Unauthorized", poller.ErrUnauthorized)

	steps := []pollStep{
		{events: []model.Event{finished(1, "docs", "a.md")}},
		{err: fatal},
		{events: []model.Event{finished(2, "docs", "b.md")}},
	}

	_, err := runLoop(t, steps, exec, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, poller.ErrUnauthorized)
	assert.Equal(t, []string{"render a.md"}, exec.commands)
}

func TestLoop_NonFatalErrorContinues(t *testing.T) {
	exec := &fakeExecutor{}

	steps := []pollStep{
		{err: errors.New("failed to decode events response")},
		{events: []model.Event{finished(5, "docs", "c.md")}},
	}

	loop, err := runLoop(t, steps, exec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"render c.md"}, exec.commands)
	assert.Equal(t, 1, loop.Snapshot().PollErrors)
}

func TestLoop_CommandFailuresDoNotStopProcessing(t *testing.T) {
	exec := &fakeExecutor{
		failOn: map[string]error{"thumb a.jpg 1": errors.New("failed to start command")},
		exitOn: map[string]int{"backup photos/a.jpg": 2},
	}
	rec := &fakeRecorder{err: errors.New("db is locked")}

	steps := []pollStep{
		{events: []model.Event{finished(1, "photos", "a.jpg"), finished(2, "docs", "d.md")}},
	}

	loop, err := runLoop(t, steps, exec, rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"thumb a.jpg 1", "backup photos/a.jpg", "render d.md"}, exec.commands)
	require.Len(t, rec.results, 3)
	assert.Error(t, rec.results[0].Err)
	assert.Equal(t, 2, rec.results[1].ExitCode)

	snap := loop.Snapshot()
	assert.Equal(t, 3, snap.Dispatched)
	assert.Equal(t, 2, snap.Failed)
	assert.NotNil(t, snap.LastDispatch)
}

func TestLoop_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{cancel: cancel}
	loop := NewLoop(src, testWatchers(), &fakeExecutor{}, nil)

	require.NoError(t, loop.Run(ctx))
	assert.Equal(t, 0, src.calls)
}

func TestLoop_StopsBetweenEventsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exec := &fakeExecutor{
		onRun: func(command string) {
			if command == "render first.md" {
				cancel()
			}
		},
	}

	src := &fakeSource{
		steps: []pollStep{
			{events: []model.Event{
				finished(1, "docs", "first.md"),
				finished(2, "docs", "second.md"),
				finished(3, "docs", "third.md"),
			}},
		},
		cancel: cancel,
	}
	loop := NewLoop(src, testWatchers(), exec, nil)

	require.NoError(t, loop.Run(ctx))
	assert.Equal(t, []string{"render first.md"}, exec.commands)
	assert.Equal(t, 1, src.calls)
}
