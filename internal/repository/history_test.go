package repository

import (
	"errors"
	"path/filepath"
	"syncwatch/internal/db"
	"syncwatch/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
}

func TestHistoryRepository_SaveAndQuery(t *testing.T) {
	setupDB(t)
	repo := NewHistoryRepository()

	event := model.Event{ID: 42, Folder: "photos", Path: "a.jpg"}
	results := []model.DispatchResult{
		{Watcher: "thumbs", Event: event, Command: "convert a.jpg", Duration: 1500 * time.Millisecond},
		{Watcher: "thumbs", Event: event, Command: "false", ExitCode: 1},
		{Watcher: "notify", Event: event, Command: "notify-send", Err: errors.New("failed to start command")},
	}
	for _, r := range results {
		require.NoError(t, repo.Save(r))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Success: 1, Failed: 2}, stats)

	recent, err := repo.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "notify", recent[0].Watcher)
	assert.Equal(t, "failed to start command", recent[0].ErrMsg)

	failed, err := repo.GetFailed(10)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "notify", failed[0].Watcher)
	assert.Equal(t, "false", failed[1].Command)

	failed, err = repo.GetFailed(1)
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	all, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	first := all[2]
	assert.Equal(t, model.StatusSuccess, first.Status)
	assert.Equal(t, int64(42), first.EventID)
	assert.Equal(t, "photos", first.Folder)
	assert.Equal(t, int64(1500), first.DurationMS)
}
