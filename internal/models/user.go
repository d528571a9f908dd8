package models

import (
	"time"
)

type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile"`
}

type Profile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`
	Photo       string    `gorm:"type:varchar(255)" json:"photo,omitempty"`
	PhoneNumber string    `gorm:"type:varchar(15);not null" json:"phone_number"`
	UserType    UserType  `gorm:"type:varchar(10);not null" json:"user_type"`
	Address     string    `gorm:"type:text;not null" json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
