package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/observability"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/storage"
)

type PublishVideoInput struct {
	Title       string
	Description string
	Duration    float64

	VideoFilename    string
	VideoBody        io.Reader
	VideoContentType string

	ThumbnailFilename    string
	ThumbnailBody        io.Reader
	ThumbnailContentType string
}

type VideoService struct {
	videos  repository.VideoRepository
	users   repository.UserRepository
	history repository.WatchHistoryRepository
	media   storage.MediaStorage
}

func NewVideoService(
	videos repository.VideoRepository,
	users repository.UserRepository,
	history repository.WatchHistoryRepository,
	media storage.MediaStorage,
) *VideoService {
	return &VideoService{videos: videos, users: users, history: history, media: media}
}

func (s *VideoService) Publish(ctx context.Context, ownerID uint, in PublishVideoInput) (*domain.Video, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.VideoBody == nil {
		return nil, apperr.Validation("video file is required")
	}
	videoURL, err := s.media.Upload(ctx, storage.ObjectKey("videos", in.VideoFilename), in.VideoBody, in.VideoContentType)
	if err != nil {
		return nil, apperr.Internal("upload video", err)
	}
	var thumbnailURL string
	if in.ThumbnailBody != nil {
		thumbnailURL, err = s.media.Upload(ctx, storage.ObjectKey("thumbnails", in.ThumbnailFilename), in.ThumbnailBody, in.ThumbnailContentType)
		if err != nil {
			return nil, apperr.Internal("upload thumbnail", err)
		}
	}
	video := &domain.Video{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Duration:     in.Duration,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Published:    true,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, apperr.Internal("create video", err)
	}
	return video, nil
}

// Get returns the video and, for a signed-in viewer, bumps the view counter
// and records the watch-history entry. A failed history write does not fail
// the read.
func (s *VideoService) Get(ctx context.Context, id uint, viewerID uint) (*domain.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			observability.RecordVideoView("not_found")
			return nil, apperr.NotFound("video does not exist")
		}
		observability.RecordVideoView("error")
		return nil, apperr.Internal("find video", err)
	}
	if err := s.videos.IncrementViews(ctx, id); err == nil {
		video.Views++
	}
	if viewerID != 0 {
		_ = s.history.Record(ctx, viewerID, id)
	}
	observability.RecordVideoView("success")
	return video, nil
}

func (s *VideoService) ListByChannel(ctx context.Context, channelUsername string) ([]domain.Video, error) {
	channel, err := s.users.FindByUsername(ctx, channelUsername)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Internal("find channel", err)
	}
	videos, err := s.videos.ListByOwner(ctx, channel.ID)
	if err != nil {
		return nil, apperr.Internal("list videos", err)
	}
	return videos, nil
}

func (s *VideoService) Delete(ctx context.Context, ownerID, id uint) error {
	deleted, err := s.videos.DeleteByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return apperr.Internal("delete video", err)
	}
	if !deleted {
		return apperr.NotFound("video does not exist or is not yours")
	}
	return nil
}
