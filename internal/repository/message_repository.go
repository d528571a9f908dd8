package repository

import (
	"errors"

	"github.com/cagrik/pazarly/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns every message of a conversation ordered by
// creation time, oldest first. Ties are broken by insertion order.
func (r *MessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Ad").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error

	return messages, err
}

// GetScoped fetches a message only when id, conversation and sender all
// match. Any mismatch looks identical to a missing row.
func (r *MessageRepository) GetScoped(id uint, conversationID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.
		Where("id = ? AND conversation_id = ? AND sender_id = ?", id, conversationID, senderID).
		First(&message).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &message, nil
}

// GetLastMessage returns the most recent message of a conversation, or
// (nil, nil) when the conversation has no messages.
func (r *MessageRepository) GetLastMessage(conversationID string) (*models.Message, error) {
	var message models.Message
	err := r.db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Ad").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&message).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &message, nil
}

// ListConversationIDs returns the distinct conversation ids where the user
// is sender or receiver.
func (r *MessageRepository) ListConversationIDs(userID uint) ([]string, error) {
	var ids []string
	err := r.db.
		Model(&models.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Distinct("conversation_id").
		Pluck("conversation_id", &ids).Error

	return ids, err
}

func (r *MessageRepository) CountByConversation(conversationID string) (int64, error) {
	var count int64
	err := r.db.
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error

	return count, err
}

// UpdateBody replaces the message text. CreatedAt and ConversationID are
// never touched here.
func (r *MessageRepository) UpdateBody(message *models.Message, body string) error {
	return r.db.Model(message).Update("body", body).Error
}

func (r *MessageRepository) DeleteMessage(message *models.Message) error {
	return r.db.Delete(message).Error
}
