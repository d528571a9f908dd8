package repository

import (
	"errors"

	"github.com/cagrik/pazarly/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

func (r *LikeRepository) GetLike(userID, adID uint) (*models.Like, error) {
	var like models.Like
	err := r.db.Where("user_id = ? AND ad_id = ?", userID, adID).First(&like).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &like, nil
}

func (r *LikeRepository) DeleteLike(like *models.Like) error {
	return r.db.Delete(like).Error
}

func (r *LikeRepository) CountByAd(adID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("ad_id = ?", adID).Count(&count).Error
	return count, err
}
