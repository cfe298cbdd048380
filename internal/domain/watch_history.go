package domain

import "time"

// WatchHistoryEntry records that a user viewed a video. One row per
// user+video pair; WatchedAt is bumped on repeat views.
type WatchHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_video;not null" json:"user_id"`
	VideoID   uint      `gorm:"uniqueIndex:idx_user_video;index;not null" json:"video_id"`
	Video     *Video    `gorm:"foreignKey:VideoID" json:"video,omitempty"`
	WatchedAt time.Time `gorm:"index;not null" json:"watched_at"`
}
