package repository

import (
	"errors"

	"github.com/cagrik/pazarly/internal/models"
	"gorm.io/gorm"
)

type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) CreateAd(ad *models.Ad) error {
	return r.db.Create(ad).Error
}

func (r *AdRepository) GetAdBySlug(slug string) (*models.Ad, error) {
	var ad models.Ad
	err := r.db.
		Preload("Category").
		Preload("User").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&ad).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ad, nil
}

// GetAdBySlugAndCategory resolves an ad addressed by its category slug and
// its own slug, the way the detail route addresses it.
func (r *AdRepository) GetAdBySlugAndCategory(adSlug, categorySlug string) (*models.Ad, error) {
	var ad models.Ad
	err := r.db.
		Preload("Category").
		Preload("User").
		Preload("Tags").
		Joins("JOIN categories ON categories.id = ads.category_id").
		Where("ads.slug = ? AND categories.slug = ?", adSlug, categorySlug).
		First(&ad).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ad, nil
}

// ListAdsByCategory returns one page of a category's ads, newest first.
func (r *AdRepository) ListAdsByCategory(categoryID uint, page, pageSize int) ([]models.Ad, int64, error) {
	var ads []models.Ad
	var total int64

	if err := r.db.
		Model(&models.Ad{}).
		Where("category_id = ?", categoryID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.
		Preload("Category").
		Preload("User").
		Preload("Tags").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ads).Error

	return ads, total, err
}

func (r *AdRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Ad{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *AdRepository) UpdateAd(ad *models.Ad) error {
	return r.db.Save(ad).Error
}

func (r *AdRepository) DeleteAd(ad *models.Ad) error {
	return r.db.Select("Tags").Delete(ad).Error
}

// FindOrCreateTag resolves a tag by slug, creating it on first use.
func (r *AdRepository) FindOrCreateTag(name, slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("slug = ?", slug).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Name: name, Slug: slug}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *AdRepository) ReplaceTags(ad *models.Ad, tags []models.Tag) error {
	return r.db.Model(ad).Association("Tags").Replace(tags)
}
