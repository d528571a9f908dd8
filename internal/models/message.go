package models

import (
	"time"
)

// Message is a single direct message between two users about one ad.
// ConversationID is derived from the unordered user pair and the ad slug,
// so both directions of a thread share the same value.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID     uint      `gorm:"not null;index" json:"receiver_id"`
	AdID           uint      `gorm:"not null;index" json:"ad_id"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	ConversationID string    `gorm:"type:varchar(255);not null;index" json:"conversation_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver"`
	Ad       Ad   `gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE" json:"ad"`
}
