package service

import (
	"context"
	"io"

	"github.com/vidora/vidora-backend/internal/domain"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*domain.PublicProfile, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, current, next string) error
}

type OAuthServiceInterface interface {
	LoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*LoginResult, error)
}

type UserServiceInterface interface {
	UpdateAccount(ctx context.Context, userID uint, in UpdateAccountInput) (*domain.PublicProfile, error)
	UpdateAvatar(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (*domain.PublicProfile, error)
	UpdateCoverImage(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (*domain.PublicProfile, error)
	ChannelProfile(ctx context.Context, username string, viewerID uint) (*domain.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uint, limit int) ([]domain.WatchHistoryEntry, error)
	ClearWatchHistory(ctx context.Context, userID uint) (int64, error)
}

type SubscriptionServiceInterface interface {
	Toggle(ctx context.Context, subscriberID uint, channelUsername string) (bool, error)
	Subscribers(ctx context.Context, channelUsername string) ([]domain.PublicProfile, error)
	SubscribedChannels(ctx context.Context, userID uint) ([]domain.PublicProfile, error)
}

type VideoServiceInterface interface {
	Publish(ctx context.Context, ownerID uint, in PublishVideoInput) (*domain.Video, error)
	Get(ctx context.Context, id uint, viewerID uint) (*domain.Video, error)
	ListByChannel(ctx context.Context, channelUsername string) ([]domain.Video, error)
	Delete(ctx context.Context, ownerID, id uint) error
}
