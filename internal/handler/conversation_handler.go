package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cagrik/pazarly/internal/middleware"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/cagrik/pazarly/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
}

func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

const conversationListPath = "/chat/all"

func conversationDetailPath(adSlug, conversationID string) string {
	return conversationListPath + "/" + url.PathEscape(adSlug) +
		"/conversations/" + url.PathEscape(conversationID)
}

// GET /chat/all
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	summaries, err := h.conversationService.ListConversations(userID)
	if err != nil {
		logger.Log.Error("Failed to list conversations",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": summaries,
		"count":         len(summaries),
	})
}

// GET /chat/all/:adSlug/conversations/:conversationID
func (h *ConversationHandler) Detail(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conversationID := c.Param("conversationID")

	detail, err := h.conversationService.GetConversation(userID, conversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": detail.ConversationID,
		"messages":        detail.Messages,
		"opposite_user":   detail.OppositeUser,
		"related_ad":      detail.RelatedAd,
	})
}

// POST /chat/all/:adSlug/conversations/:conversationID
// Form field "message". An empty body is skipped silently, the redirect is
// the same either way.
func (h *ConversationHandler) Send(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	adSlug := c.Param("adSlug")
	conversationID := c.Param("conversationID")
	detailPath := conversationDetailPath(adSlug, conversationID)

	body := c.PostForm("message")
	if strings.TrimSpace(body) == "" {
		c.Redirect(http.StatusFound, detailPath)
		return
	}

	_, err := h.conversationService.SendReply(userID, conversationID, body)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.Redirect(http.StatusFound, detailPath)
}

// POST /chat/all/:adSlug/conversations/:conversationID/message/:messageID/edit
// Form field "editedmessage". Only the sender may edit, anything else is a 404.
func (h *ConversationHandler) Edit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	adSlug := c.Param("adSlug")
	conversationID := c.Param("conversationID")
	detailPath := conversationDetailPath(adSlug, conversationID)

	messageID, err := strconv.ParseUint(c.Param("messageID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	newBody := c.PostForm("editedmessage")
	if strings.TrimSpace(newBody) == "" {
		c.Redirect(http.StatusFound, detailPath)
		return
	}

	err = h.conversationService.EditMessage(userID, conversationID, uint(messageID), newBody)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit message"})
		return
	}

	c.Redirect(http.StatusFound, detailPath)
}

// POST /chat/all/:adSlug/conversations/:conversationID/message/:messageID/delete
// Deleting the last message sends the user back to the conversation list.
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	adSlug := c.Param("adSlug")
	conversationID := c.Param("conversationID")

	messageID, err := strconv.ParseUint(c.Param("messageID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	remaining, err := h.conversationService.DeleteMessage(userID, conversationID, uint(messageID))
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}

	if !remaining {
		c.Redirect(http.StatusFound, conversationListPath)
		return
	}

	c.Redirect(http.StatusFound, conversationDetailPath(adSlug, conversationID))
}
