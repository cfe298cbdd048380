package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/observability"
	"github.com/vidora/vidora-backend/internal/repository"
)

type SubscriptionService struct {
	users repository.UserRepository
	subs  repository.SubscriptionRepository
	stats ChannelStatsCache
}

func NewSubscriptionService(users repository.UserRepository, subs repository.SubscriptionRepository, stats ChannelStatsCache) *SubscriptionService {
	return &SubscriptionService{users: users, subs: subs, stats: stats}
}

// Toggle subscribes the user to the channel, or unsubscribes if already
// subscribed. Returns the resulting state.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID uint, channelUsername string) (bool, error) {
	channel, err := s.lookupChannel(ctx, channelUsername)
	if err != nil {
		return false, err
	}
	if channel.ID == subscriberID {
		return false, apperr.Validation("cannot subscribe to your own channel")
	}
	subscribed, err := s.subs.Toggle(ctx, subscriberID, channel.ID)
	if err != nil {
		return false, apperr.Internal("toggle subscription", err)
	}
	_ = s.stats.Invalidate(ctx, channel.ID)
	if subscribed {
		observability.RecordSubscriptionToggle("subscribe")
	} else {
		observability.RecordSubscriptionToggle("unsubscribe")
	}
	return subscribed, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelUsername string) ([]domain.PublicProfile, error) {
	channel, err := s.lookupChannel(ctx, channelUsername)
	if err != nil {
		return nil, err
	}
	users, err := s.subs.ListSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, apperr.Internal("list subscribers", err)
	}
	return publicProfiles(users), nil
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, userID uint) ([]domain.PublicProfile, error) {
	users, err := s.subs.ListSubscribedChannels(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list subscribed channels", err)
	}
	return publicProfiles(users), nil
}

func (s *SubscriptionService) lookupChannel(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.Validation("channel username is required")
	}
	channel, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("find channel", err)
	}
	return channel, nil
}

func publicProfiles(users []domain.User) []domain.PublicProfile {
	profiles := make([]domain.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return profiles
}
