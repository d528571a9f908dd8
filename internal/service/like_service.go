package service

import (
	"errors"

	"github.com/cagrik/pazarly/internal/cache"
	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrAlreadyLiked = errors.New("ad already liked")
	ErrNotLiked     = errors.New("ad not liked")
)

type LikeService struct {
	likeRepo *repository.LikeRepository
	adRepo   *repository.AdRepository
	cache    *cache.LikeCache
}

func NewLikeService(likeRepo *repository.LikeRepository, adRepo *repository.AdRepository, cache *cache.LikeCache) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		adRepo:   adRepo,
		cache:    cache,
	}
}

func (s *LikeService) LikeAd(userID uint, adSlug string) error {
	ad, err := s.adRepo.GetAdBySlug(adSlug)
	if err != nil {
		return err
	}
	if ad == nil {
		return ErrAdNotFound
	}

	existing, err := s.likeRepo.GetLike(userID, ad.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyLiked
	}

	like := &models.Like{UserID: userID, AdID: ad.ID}
	if err := s.likeRepo.CreateLike(like); err != nil {
		logger.Log.Error("Failed to create like",
			zap.Uint("user_id", userID),
			zap.Uint("ad_id", ad.ID),
			zap.Error(err),
		)
		return err
	}

	s.invalidateCount(ad.ID)

	logger.Log.Info("Ad liked",
		zap.Uint("user_id", userID),
		zap.Uint("ad_id", ad.ID),
	)

	return nil
}

func (s *LikeService) UnlikeAd(userID uint, adSlug string) error {
	ad, err := s.adRepo.GetAdBySlug(adSlug)
	if err != nil {
		return err
	}
	if ad == nil {
		return ErrAdNotFound
	}

	like, err := s.likeRepo.GetLike(userID, ad.ID)
	if err != nil {
		return err
	}
	if like == nil {
		return ErrNotLiked
	}

	if err := s.likeRepo.DeleteLike(like); err != nil {
		logger.Log.Error("Failed to delete like",
			zap.Uint("user_id", userID),
			zap.Uint("ad_id", ad.ID),
			zap.Error(err),
		)
		return err
	}

	s.invalidateCount(ad.ID)

	logger.Log.Info("Ad unliked",
		zap.Uint("user_id", userID),
		zap.Uint("ad_id", ad.ID),
	)

	return nil
}

// CountLikes serves the like count from Redis when possible and repairs
// the cache from the database on a miss.
func (s *LikeService) CountLikes(adID uint) (int64, error) {
	if s.cache != nil {
		count, hit, err := s.cache.GetCount(adID)
		if err != nil {
			logger.Log.Warn("Like cache read failed",
				zap.Uint("ad_id", adID),
				zap.Error(err),
			)
		} else if hit {
			return count, nil
		}
	}

	count, err := s.likeRepo.CountByAd(adID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetCount(adID, count); err != nil {
			logger.Log.Warn("Like cache write failed",
				zap.Uint("ad_id", adID),
				zap.Error(err),
			)
		}
	}

	return count, nil
}

// HasLiked reports whether the user already liked the ad
func (s *LikeService) HasLiked(userID, adID uint) (bool, error) {
	like, err := s.likeRepo.GetLike(userID, adID)
	if err != nil {
		return false, err
	}
	return like != nil, nil
}

func (s *LikeService) invalidateCount(adID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(adID); err != nil {
		logger.Log.Warn("Like cache invalidation failed",
			zap.Uint("ad_id", adID),
			zap.Error(err),
		)
	}
}
