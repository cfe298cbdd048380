package repository

import (
	"context"
	"errors"

	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/observability"

	"gorm.io/gorm"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	FindByID(ctx context.Context, id uint) (*domain.Video, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Video, error)
	IncrementViews(ctx context.Context, id uint) error
	DeleteByIDForOwner(ctx context.Context, ownerID, id uint) (bool, error)
}

type GormVideoRepository struct{ db *gorm.DB }

func NewVideoRepository(db *gorm.DB) VideoRepository { return &GormVideoRepository{db: db} }

func (r *GormVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	err := r.db.WithContext(ctx).Create(video).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "video", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "video", "create", "success")
	return nil
}

func (r *GormVideoRepository) FindByID(ctx context.Context, id uint) (*domain.Video, error) {
	var v domain.Video
	err := r.db.WithContext(ctx).
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Omit("password_hash", "refresh_token")
		}).
		First(&v, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "video", "find_by_id", "not_found")
			return nil, ErrVideoNotFound
		}
		observability.RecordRepositoryOperation(ctx, "video", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "video", "find_by_id", "success")
	return &v, nil
}

func (r *GormVideoRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Video, error) {
	var videos []domain.Video
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND published = ?", ownerID, true).
		Order("created_at DESC").
		Find(&videos).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "video", "list_by_owner", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "video", "list_by_owner", "success")
	return videos, nil
}

func (r *GormVideoRepository) IncrementViews(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&domain.Video{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "video", "increment_views", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "video", "increment_views", "success")
	return nil
}

func (r *GormVideoRepository) DeleteByIDForOwner(ctx context.Context, ownerID, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&domain.Video{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "video", "delete_by_id_for_owner", "error")
		return false, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "video", "delete_by_id_for_owner", "success")
	return res.RowsAffected > 0, nil
}
