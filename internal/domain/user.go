package domain

import "time"

// User is both the authentication principal and the channel owner.
// Username is stored lowercase and compared case-insensitively.
// RefreshToken holds the single refresh credential currently valid for this
// user; nil means no active session. Overwriting or clearing it invalidates
// every previously issued refresh token regardless of expiry.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName      string    `gorm:"size:255" json:"full_name"`
	AvatarURL     string    `gorm:"size:1024" json:"avatar_url"`
	CoverImageURL string    `gorm:"size:1024" json:"cover_image_url"`
	PasswordHash  string    `gorm:"size:128;not null" json:"-"`
	RefreshToken  *string   `gorm:"size:1024" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicProfile is the request-scoped and response view of a user. It can
// never carry the password hash or the stored refresh token.
type PublicProfile struct {
	ID            uint      `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// ChannelProfile is a user profile enriched with subscription statistics,
// relative to an optional viewer.
type ChannelProfile struct {
	PublicProfile
	SubscriberCount int64 `json:"subscriber_count"`
	SubscribedTo    int64 `json:"subscribed_to_count"`
	IsSubscribed    bool  `json:"is_subscribed"`
}
