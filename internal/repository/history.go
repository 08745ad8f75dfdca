package repository

import (
	"syncwatch/internal/db"
	"syncwatch/internal/model"
	"time"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Save(result model.DispatchResult) error {
	status := model.StatusSuccess
	errMsg := ""
	if result.Failed() {
		status = model.StatusFailed
	}
	if result.Err != nil {
		errMsg = result.Err.Error()
	}

	history := model.History{
		Status:       status,
		Watcher:      result.Watcher,
		EventID:      result.Event.ID,
		Folder:       result.Event.Folder,
		Path:         result.Event.Path,
		Command:      result.Command,
		ExitCode:     result.ExitCode,
		ErrMsg:       errMsg,
		DurationMS:   result.Duration.Milliseconds(),
		DispatchedAt: time.Now(),
	}

	return db.DB.Create(&history).Error
}

type Stats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.History{}).
		Where("status = ?", model.StatusSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Order("dispatched_at desc").
		Order("id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetFailed(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Where("status = ?", model.StatusFailed).
		Order("dispatched_at desc").
		Order("id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}
