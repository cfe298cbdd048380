package repository

import (
	"context"
	"time"

	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchHistoryRepository interface {
	// Record upserts the user+video pair, bumping WatchedAt on repeat views.
	Record(ctx context.Context, userID, videoID uint) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]domain.WatchHistoryEntry, error)
	ClearForUser(ctx context.Context, userID uint) (int64, error)
}

type GormWatchHistoryRepository struct{ db *gorm.DB }

func NewWatchHistoryRepository(db *gorm.DB) WatchHistoryRepository {
	return &GormWatchHistoryRepository{db: db}
}

func (r *GormWatchHistoryRepository) Record(ctx context.Context, userID, videoID uint) error {
	entry := domain.WatchHistoryEntry{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "watch_history", "record", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "watch_history", "record", "success")
	return nil
}

func (r *GormWatchHistoryRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]domain.WatchHistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []domain.WatchHistoryEntry
	err := r.db.WithContext(ctx).
		Preload("Video").
		Where("user_id = ?", userID).
		Order("watched_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "watch_history", "list_by_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "watch_history", "list_by_user", "success")
	return entries, nil
}

func (r *GormWatchHistoryRepository) ClearForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.WatchHistoryEntry{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "watch_history", "clear_for_user", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "watch_history", "clear_for_user", "success")
	return res.RowsAffected, nil
}
