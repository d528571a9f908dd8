package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cagrik/pazarly/internal/middleware"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/cagrik/pazarly/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdHandler struct {
	adService           *service.AdService
	likeService         *service.LikeService
	conversationService *service.ConversationService
	uploadDir           string
}

func NewAdHandler(
	adService *service.AdService,
	likeService *service.LikeService,
	conversationService *service.ConversationService,
	uploadDir string,
) *AdHandler {
	return &AdHandler{
		adService:           adService,
		likeService:         likeService,
		conversationService: conversationService,
		uploadDir:           uploadDir,
	}
}

// GET /api/categories
func (h *AdHandler) ListCategories(c *gin.Context) {
	categories, err := h.adService.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GET /categories/:categorySlug/ads?page=N
func (h *AdHandler) ListAds(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.adService.ListAdsByCategory(c.Param("categorySlug"), page)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ads"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /categories/:categorySlug/ads/:adSlug
func (h *AdHandler) Detail(c *gin.Context) {
	ad, err := h.adService.GetAd(c.Param("categorySlug"), c.Param("adSlug"))
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ad"})
		return
	}

	likes, err := h.likeService.CountLikes(ad.ID)
	if err != nil {
		logger.Log.Warn("Failed to count likes",
			zap.Uint("ad_id", ad.ID),
			zap.Error(err),
		)
	}

	// The owner can opt out of showing contact details
	if !ad.ShowContactInfo {
		ad.ContactInfo = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"ad":    ad,
		"likes": likes,
	})
}

// POST /api/ads (multipart form)
func (h *AdHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	input, err := h.parseAdForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ad, err := h.adService.CreateAd(userID, *input)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Ad created successfully",
		"ad":      ad,
	})
}

// POST /categories/:categorySlug/ads/:adSlug/edit
func (h *AdHandler) Edit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	input, err := h.parseAdForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ad, err := h.adService.UpdateAd(userID, c.Param("categorySlug"), c.Param("adSlug"), *input)
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
			return
		}
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ad updated successfully",
		"ad":      ad,
	})
}

// POST /categories/:categorySlug/ads/:adSlug/delete
func (h *AdHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	err := h.adService.DeleteAd(userID, c.Param("categorySlug"), c.Param("adSlug"))
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ad"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ad deleted successfully"})
}

// POST /categories/:categorySlug/ads/:adSlug/contact (form field "message")
// Starts (or continues) the conversation with the ad owner and redirects
// into the thread.
func (h *AdHandler) Contact(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	categorySlug := c.Param("categorySlug")
	adSlug := c.Param("adSlug")

	body := c.PostForm("message")
	if strings.TrimSpace(body) == "" {
		// Nothing to send, back to the ad page
		c.Redirect(http.StatusFound, "/categories/"+categorySlug+"/ads/"+adSlug)
		return
	}

	message, err := h.conversationService.StartConversation(userID, categorySlug, adSlug, body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
		case errors.Is(err, service.ErrSelfConversation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot message your own ad"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	c.Redirect(http.StatusFound, conversationDetailPath(adSlug, message.ConversationID))
}

// parseAdForm reads the multipart ad form shared by create and edit.
// The image file is optional, stored under the upload dir with a random
// name to avoid collisions.
func (h *AdHandler) parseAdForm(c *gin.Context) (*service.AdInput, error) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		return nil, errors.New("invalid price")
	}

	showContact := true
	if v := c.PostForm("show_contact_info"); v != "" {
		showContact, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid show_contact_info")
		}
	}

	var eventStart, eventEnd *time.Time
	if v := c.PostForm("event_start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("invalid event_start_date")
		}
		eventStart = &t
	}
	if v := c.PostForm("event_end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("invalid event_end_date")
		}
		eventEnd = &t
	}

	var tags []string
	for _, tag := range strings.Split(c.PostForm("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	imagePath := ""
	if file, err := c.FormFile("image"); err == nil {
		imagePath = filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			return nil, errors.New("failed to store image")
		}
	}

	return &service.AdInput{
		Title:           c.PostForm("title"),
		CategorySlug:    c.PostForm("category"),
		Description:     c.PostForm("description"),
		Tags:            tags,
		Location:        c.PostForm("location"),
		PostalCode:      c.PostForm("postal_code"),
		ContactInfo:     c.PostForm("contact_info"),
		Price:           price,
		ShowContactInfo: showContact,
		EventStartDate:  eventStart,
		EventEndDate:    eventEnd,
		Image:           imagePath,
	}, nil
}
