package service

import (
	"errors"
	"strings"
	"time"

	"github.com/cagrik/pazarly/internal/auditlog"
	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrConversationNotFound covers both a conversation with no messages
	// and a requester who is not a participant. The two cases are kept
	// indistinguishable on purpose so message ids of other users cannot be
	// probed.
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrEmptyMessageBody     = errors.New("message body cannot be empty")
	ErrSelfConversation     = errors.New("cannot message your own ad")
)

// ConversationSummary is one row of the conversation list view
type ConversationSummary struct {
	ConversationID string         `json:"conversation_id"`
	LastMessage    models.Message `json:"last_message"`
	OppositeUser   models.User    `json:"opposite_user"`
	RelatedAd      models.Ad      `json:"related_ad"`
}

// ConversationDetail is the full thread plus the counterpart and the ad
type ConversationDetail struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []models.Message `json:"messages"`
	OppositeUser   models.User      `json:"opposite_user"`
	RelatedAd      models.Ad        `json:"related_ad"`
}

type ConversationService struct {
	messageRepo *repository.MessageRepository
	adRepo      *repository.AdRepository
	userRepo    *repository.UserRepository
	audit       *auditlog.Log
}

func NewConversationService(
	messageRepo *repository.MessageRepository,
	adRepo *repository.AdRepository,
	userRepo *repository.UserRepository,
	audit *auditlog.Log,
) *ConversationService {
	return &ConversationService{
		messageRepo: messageRepo,
		adRepo:      adRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// oppositeOf returns the participant of msg who is not userID
func oppositeOf(msg *models.Message, userID uint) models.User {
	if msg.SenderID == userID {
		return msg.Receiver
	}
	return msg.Sender
}

func isParticipant(msg *models.Message, userID uint) bool {
	return msg.SenderID == userID || msg.ReceiverID == userID
}

// Summarize resolves the last message of a conversation together with the
// opposite user and the related ad. Every field is zero when the
// conversation has no messages.
func (s *ConversationService) Summarize(userID uint, conversationID string) (*ConversationSummary, error) {
	last, err := s.messageRepo.GetLastMessage(conversationID)
	if err != nil {
		logger.Log.Error("Failed to fetch last message",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	return &ConversationSummary{
		ConversationID: conversationID,
		LastMessage:    *last,
		OppositeUser:   oppositeOf(last, userID),
		RelatedAd:      last.Ad,
	}, nil
}

// ListConversations returns a summary for every conversation the user
// participates in.
func (s *ConversationService) ListConversations(userID uint) ([]ConversationSummary, error) {
	ids, err := s.messageRepo.ListConversationIDs(userID)
	if err != nil {
		logger.Log.Error("Failed to list conversation ids",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.Summarize(userID, id)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			// Deleted between the id query and the summary query
			continue
		}
		summaries = append(summaries, *summary)
	}

	logger.Log.Debug("Listed conversations",
		zap.Uint("user_id", userID),
		zap.Int("count", len(summaries)),
	)

	return summaries, nil
}

// GetConversation returns the ordered messages of a conversation. The
// requester must be a participant and the conversation must have at least
// one message, otherwise ErrConversationNotFound.
func (s *ConversationService) GetConversation(userID uint, conversationID string) (*ConversationDetail, error) {
	messages, err := s.messageRepo.ListByConversation(conversationID)
	if err != nil {
		logger.Log.Error("Failed to list conversation messages",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, err
	}

	if len(messages) == 0 {
		return nil, ErrConversationNotFound
	}

	// Every message of a conversation shares the same user pair, checking
	// one row is enough.
	if !isParticipant(&messages[0], userID) {
		logger.Log.Warn("Conversation access denied",
			zap.Uint("user_id", userID),
			zap.String("conversation_id", conversationID),
		)
		return nil, ErrConversationNotFound
	}

	last := messages[len(messages)-1]

	return &ConversationDetail{
		ConversationID: conversationID,
		Messages:       messages,
		OppositeUser:   oppositeOf(&last, userID),
		RelatedAd:      last.Ad,
	}, nil
}

// SendReply appends a message to an existing conversation. The receiver
// and the ad are resolved from the conversation itself, so this path never
// creates a new conversation.
func (s *ConversationService) SendReply(userID uint, conversationID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessageBody
	}

	last, err := s.messageRepo.GetLastMessage(conversationID)
	if err != nil {
		return nil, err
	}
	if last == nil || !isParticipant(last, userID) {
		return nil, ErrConversationNotFound
	}

	opposite := oppositeOf(last, userID)

	message := &models.Message{
		SenderID:       userID,
		ReceiverID:     opposite.ID,
		AdID:           last.AdID,
		Body:           body,
		ConversationID: conversationID,
		CreatedAt:      time.Now(),
	}

	if err := s.messageRepo.CreateMessage(message); err != nil {
		logger.Log.Error("Failed to create message",
			zap.Uint("sender_id", userID),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, err
	}

	s.auditEvent(auditlog.EventMessageSent, message.ID, conversationID, userID)

	logger.Log.Info("Message sent",
		zap.Uint("message_id", message.ID),
		zap.Uint("sender_id", userID),
		zap.Uint("receiver_id", opposite.ID),
		zap.String("conversation_id", conversationID),
	)

	return message, nil
}

// StartConversation is the ad-detail contact flow: first message from the
// current user to the ad owner. When the pair already talked about this ad
// the derived id matches and the message lands in the existing thread.
func (s *ConversationService) StartConversation(userID uint, categorySlug, adSlug, body string) (*models.Message, error) {
	ad, err := s.adRepo.GetAdBySlugAndCategory(adSlug, categorySlug)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, ErrAdNotFound
	}

	if ad.UserID == userID {
		return nil, ErrSelfConversation
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessageBody
	}

	sender, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}

	conversationID := DeriveConversationID(sender, &ad.User, ad.Slug)

	message := &models.Message{
		SenderID:       userID,
		ReceiverID:     ad.UserID,
		AdID:           ad.ID,
		Body:           body,
		ConversationID: conversationID,
		CreatedAt:      time.Now(),
	}

	if err := s.messageRepo.CreateMessage(message); err != nil {
		logger.Log.Error("Failed to create first message",
			zap.Uint("sender_id", userID),
			zap.String("ad_slug", ad.Slug),
			zap.Error(err),
		)
		return nil, err
	}

	s.auditEvent(auditlog.EventMessageSent, message.ID, conversationID, userID)

	logger.Log.Info("Conversation started",
		zap.Uint("message_id", message.ID),
		zap.Uint("sender_id", userID),
		zap.Uint("ad_owner_id", ad.UserID),
		zap.String("conversation_id", conversationID),
	)

	return message, nil
}

// EditMessage replaces the body of a message the user authored. A wrong
// sender or a wrong conversation both come back as ErrMessageNotFound.
func (s *ConversationService) EditMessage(userID uint, conversationID string, messageID uint, newBody string) error {
	newBody = strings.TrimSpace(newBody)
	if newBody == "" {
		return ErrEmptyMessageBody
	}

	message, err := s.messageRepo.GetScoped(messageID, conversationID, userID)
	if err != nil {
		return err
	}
	if message == nil {
		logger.Log.Warn("Message edit denied",
			zap.Uint("user_id", userID),
			zap.Uint("message_id", messageID),
			zap.String("conversation_id", conversationID),
		)
		return ErrMessageNotFound
	}

	if err := s.messageRepo.UpdateBody(message, newBody); err != nil {
		logger.Log.Error("Failed to update message body",
			zap.Uint("message_id", messageID),
			zap.Error(err),
		)
		return err
	}

	s.auditEvent(auditlog.EventMessageEdited, messageID, conversationID, userID)

	logger.Log.Info("Message edited",
		zap.Uint("message_id", messageID),
		zap.Uint("user_id", userID),
		zap.String("conversation_id", conversationID),
	)

	return nil
}

// DeleteMessage removes a message the user authored and reports whether
// the conversation still has messages afterwards.
func (s *ConversationService) DeleteMessage(userID uint, conversationID string, messageID uint) (remaining bool, err error) {
	message, err := s.messageRepo.GetScoped(messageID, conversationID, userID)
	if err != nil {
		return false, err
	}
	if message == nil {
		logger.Log.Warn("Message delete denied",
			zap.Uint("user_id", userID),
			zap.Uint("message_id", messageID),
			zap.String("conversation_id", conversationID),
		)
		return false, ErrMessageNotFound
	}

	if err := s.messageRepo.DeleteMessage(message); err != nil {
		logger.Log.Error("Failed to delete message",
			zap.Uint("message_id", messageID),
			zap.Error(err),
		)
		return false, err
	}

	s.auditEvent(auditlog.EventMessageDeleted, messageID, conversationID, userID)

	count, err := s.messageRepo.CountByConversation(conversationID)
	if err != nil {
		return false, err
	}

	logger.Log.Info("Message deleted",
		zap.Uint("message_id", messageID),
		zap.Uint("user_id", userID),
		zap.String("conversation_id", conversationID),
		zap.Int64("remaining", count),
	)

	return count > 0, nil
}

// auditEvent records a message mutation; the audit trail must not fail the
// user-facing operation.
func (s *ConversationService) auditEvent(event string, messageID uint, conversationID string, actorID uint) {
	if s.audit == nil {
		return
	}

	entry := auditlog.Entry{
		Event:          event,
		MessageID:      messageID,
		ConversationID: conversationID,
		ActorID:        actorID,
		Timestamp:      time.Now(),
	}

	if err := s.audit.Append(entry); err != nil {
		logger.Log.Error("Failed to append audit entry",
			zap.String("event", event),
			zap.Uint("message_id", messageID),
			zap.Error(err),
		)
	}
}
