package handler

import (
	"errors"
	"net/http"

	"github.com/cagrik/pazarly/internal/middleware"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

// POST /api/ads/:adSlug/like
func (h *LikeHandler) Like(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	err := h.likeService.LikeAd(userID, c.Param("adSlug"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
		case errors.Is(err, service.ErrAlreadyLiked):
			c.JSON(http.StatusConflict, gin.H{"error": "Ad already liked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like ad"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ad liked"})
}

// POST /api/ads/:adSlug/unlike
func (h *LikeHandler) Unlike(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	err := h.likeService.UnlikeAd(userID, c.Param("adSlug"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
		case errors.Is(err, service.ErrNotLiked):
			c.JSON(http.StatusConflict, gin.H{"error": "Ad not liked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike ad"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ad unliked"})
}
