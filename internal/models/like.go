package models

import "time"

// Like records a single user liking a single ad. The composite unique
// index keeps it to one like per user per ad.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_ad" json:"user_id"`
	AdID      uint      `gorm:"not null;uniqueIndex:idx_likes_user_ad" json:"ad_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Ad   Ad   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
