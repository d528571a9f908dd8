package models

import (
	"time"
)

type Ad struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	CategoryID      uint       `gorm:"not null;index" json:"category_id"`
	Slug            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Image           string     `gorm:"type:varchar(255)" json:"image"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	Location        string     `gorm:"type:varchar(255);not null" json:"location"`
	PostalCode      string     `gorm:"type:varchar(20);not null" json:"postal_code"`
	ContactInfo     string     `gorm:"type:varchar(255);not null" json:"contact_info"`
	Price           float64    `gorm:"type:numeric(10,2);not null" json:"price"`
	ShowContactInfo bool       `gorm:"default:true" json:"show_contact_info"`
	EventStartDate  *time.Time `json:"event_start_date,omitempty"`
	EventEndDate    *time.Time `json:"event_end_date,omitempty"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Category Category `gorm:"constraint:OnDelete:CASCADE" json:"category"`
	User     User     `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Tags     []Tag    `gorm:"many2many:ad_tags" json:"tags"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
}
