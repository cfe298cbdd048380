package repository

import (
	"context"
	"errors"

	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/observability"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	// Toggle creates the subscription if absent, deletes it otherwise, and
	// reports whether the user is subscribed afterwards.
	Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error)
	CountSubscribers(ctx context.Context, channelID uint) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error)
	ListSubscribers(ctx context.Context, channelID uint) ([]domain.User, error)
	ListSubscribedChannels(ctx context.Context, subscriberID uint) ([]domain.User, error)
}

type GormSubscriptionRepository struct{ db *gorm.DB }

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

func (r *GormSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var subscribed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Subscription
		err := tx.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
			First(&existing).Error
		switch {
		case err == nil:
			subscribed = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			subscribed = true
			return tx.Create(&domain.Subscription{
				SubscriberID: subscriberID,
				ChannelID:    channelID,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "subscription", "toggle", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "subscription", "toggle", "success")
	return subscribed, nil
}

func (r *GormSubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "subscription", "is_subscribed", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(ctx, "subscription", "is_subscribed", "success")
	return count > 0, nil
}

func (r *GormSubscriptionRepository) CountSubscribers(ctx context.Context, channelID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "subscription", "count_subscribers", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "subscription", "count_subscribers", "success")
	return count, nil
}

func (r *GormSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "subscription", "count_subscribed_to", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "subscription", "count_subscribed_to", "success")
	return count, nil
}

func (r *GormSubscriptionRepository) ListSubscribers(ctx context.Context, channelID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Omit("password_hash", "refresh_token").
		Joins("JOIN subscriptions s ON s.subscriber_id = users.id").
		Where("s.channel_id = ?", channelID).
		Order("s.created_at DESC").
		Find(&users).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "subscription", "list_subscribers", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "subscription", "list_subscribers", "success")
	return users, nil
}

func (r *GormSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Omit("password_hash", "refresh_token").
		Joins("JOIN subscriptions s ON s.channel_id = users.id").
		Where("s.subscriber_id = ?", subscriberID).
		Order("s.created_at DESC").
		Find(&users).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "subscription", "list_subscribed_channels", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "subscription", "list_subscribed_channels", "success")
	return users, nil
}
