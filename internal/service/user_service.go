package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/storage"
)

const channelStatsTTL = 5 * time.Minute

type UpdateAccountInput struct {
	FullName *string
	Email    *string
}

type UserService struct {
	users   repository.UserRepository
	subs    repository.SubscriptionRepository
	history repository.WatchHistoryRepository
	media   storage.MediaStorage
	stats   ChannelStatsCache
}

func NewUserService(
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	history repository.WatchHistoryRepository,
	media storage.MediaStorage,
	stats ChannelStatsCache,
) *UserService {
	return &UserService{users: users, subs: subs, history: history, media: media, stats: stats}
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uint, in UpdateAccountInput) (*domain.PublicProfile, error) {
	if in.FullName == nil && in.Email == nil {
		return nil, apperr.Validation("nothing to update")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user no longer exists")
		}
		return nil, apperr.Internal("find user", err)
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, apperr.Validation("email cannot be empty")
		}
		if email != user.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, apperr.Conflict("email already registered")
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperr.Internal("check email", err)
			}
			user.Email = email
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("update user", err)
	}
	profile := user.Public()
	return &profile, nil
}

// UpdateAvatar uploads the new image and persists its public URL. The old
// object is left behind; media retention is the host's concern.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (*domain.PublicProfile, error) {
	return s.updateImage(ctx, userID, "avatars", filename, body, contentType, func(u *domain.User, url string) {
		u.AvatarURL = url
	})
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (*domain.PublicProfile, error) {
	return s.updateImage(ctx, userID, "covers", filename, body, contentType, func(u *domain.User, url string) {
		u.CoverImageURL = url
	})
}

func (s *UserService) updateImage(ctx context.Context, userID uint, folder, filename string, body io.Reader, contentType string, assign func(*domain.User, string)) (*domain.PublicProfile, error) {
	if body == nil {
		return nil, apperr.Validation("image file is required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user no longer exists")
		}
		return nil, apperr.Internal("find user", err)
	}
	url, err := s.media.Upload(ctx, storage.ObjectKey(folder, filename), body, contentType)
	if err != nil {
		return nil, apperr.Internal("upload image", err)
	}
	assign(user, url)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("update user", err)
	}
	profile := user.Public()
	return &profile, nil
}

// ChannelProfile returns the public profile plus subscription statistics,
// relative to an optional viewer (viewerID 0 means anonymous).
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID uint) (*domain.ChannelProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.Validation("username is required")
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("find channel", err)
	}

	stats, hit, err := s.stats.Get(ctx, user.ID)
	if err != nil || !hit {
		// Cache errors degrade to a direct read; the profile is served
		// either way.
		subscribers, err := s.subs.CountSubscribers(ctx, user.ID)
		if err != nil {
			return nil, apperr.Internal("count subscribers", err)
		}
		subscribedTo, err := s.subs.CountSubscribedTo(ctx, user.ID)
		if err != nil {
			return nil, apperr.Internal("count subscriptions", err)
		}
		stats = ChannelStats{Subscribers: subscribers, SubscribedTo: subscribedTo}
		_ = s.stats.Set(ctx, user.ID, stats, channelStatsTTL)
	}

	profile := &domain.ChannelProfile{
		PublicProfile:   user.Public(),
		SubscriberCount: stats.Subscribers,
		SubscribedTo:    stats.SubscribedTo,
	}
	if viewerID != 0 && viewerID != user.ID {
		subscribed, err := s.subs.IsSubscribed(ctx, viewerID, user.ID)
		if err != nil {
			return nil, apperr.Internal("check subscription", err)
		}
		profile.IsSubscribed = subscribed
	}
	return profile, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID uint, limit int) ([]domain.WatchHistoryEntry, error) {
	entries, err := s.history.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal("list watch history", err)
	}
	return entries, nil
}

func (s *UserService) ClearWatchHistory(ctx context.Context, userID uint) (int64, error) {
	removed, err := s.history.ClearForUser(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("clear watch history", err)
	}
	return removed, nil
}
