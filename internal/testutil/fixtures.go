package testutil

import (
	"testing"
	"time"

	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/utils"
	"gorm.io/gorm"
)

// CreateTestUser persists a user with a hashed password and a minimal profile
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string) *models.User {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Profile: models.Profile{
			DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			PhoneNumber: "5550001122",
			UserType:    models.UserTypeBuyer,
			Address:     "1 Test Street",
		},
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestCategory persists a category
func CreateTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return category
}

// CreateTestAd persists an ad owned by the given user
func CreateTestAd(t *testing.T, db *gorm.DB, owner *models.User, category *models.Category, title, slug string) *models.Ad {
	ad := &models.Ad{
		Title:       title,
		CategoryID:  category.ID,
		Slug:        slug,
		Image:       "test.jpg",
		Description: "Original description",
		Location:    "Original Location",
		PostalCode:  "638056",
		ContactInfo: "original@example.com",
		Price:       100.00,
		UserID:      owner.ID,
	}

	if err := db.Create(ad).Error; err != nil {
		t.Fatalf("Failed to create test ad: %v", err)
	}

	return ad
}

// CreateTestMessage persists a message with an explicit timestamp so tests
// can control ordering independent of insertion order
func CreateTestMessage(t *testing.T, db *gorm.DB, sender, receiver *models.User, ad *models.Ad, conversationID, body string, createdAt time.Time) *models.Message {
	message := &models.Message{
		SenderID:       sender.ID,
		ReceiverID:     receiver.ID,
		AdID:           ad.ID,
		Body:           body,
		ConversationID: conversationID,
		CreatedAt:      createdAt,
	}

	if err := db.Create(message).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}

	return message
}
