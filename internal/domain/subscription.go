package domain

import "time"

// Subscription links a subscriber to a channel (both users). The pair is
// unique; toggling deletes or recreates the row.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"uniqueIndex:idx_subscriber_channel;not null" json:"subscriber_id"`
	ChannelID    uint      `gorm:"uniqueIndex:idx_subscriber_channel;index;not null" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
}
