package domain

import "time"

type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OwnerID      uint      `gorm:"index;not null" json:"owner_id"`
	Owner        *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"size:4096" json:"description"`
	VideoURL     string    `gorm:"size:1024;not null" json:"video_url"`
	ThumbnailURL string    `gorm:"size:1024" json:"thumbnail_url"`
	Duration     float64   `json:"duration"`
	Views        int64     `gorm:"not null;default:0" json:"views"`
	Published    bool      `gorm:"not null;default:true" json:"published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
