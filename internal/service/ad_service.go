package service

import (
	"errors"
	"strings"
	"time"

	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/internal/utils"
	"github.com/cagrik/pazarly/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrAdNotFound is also returned on an ownership mismatch, the same
	// information-hiding rule the chat side uses.
	ErrAdNotFound       = errors.New("ad not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// AdInput carries the ad form fields
type AdInput struct {
	Title           string
	CategorySlug    string
	Description     string
	Tags            []string
	Location        string
	PostalCode      string
	ContactInfo     string
	Price           float64
	ShowContactInfo bool
	EventStartDate  *time.Time
	EventEndDate    *time.Time
	Image           string
}

// AdPage is one page of a category listing
type AdPage struct {
	Ads      []models.Ad `json:"ads"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int64       `json:"total"`
}

type AdService struct {
	adRepo       *repository.AdRepository
	categoryRepo *repository.CategoryRepository
	pageSize     int
}

func NewAdService(adRepo *repository.AdRepository, categoryRepo *repository.CategoryRepository, pageSize int) *AdService {
	return &AdService{
		adRepo:       adRepo,
		categoryRepo: categoryRepo,
		pageSize:     pageSize,
	}
}

func (s *AdService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.ListCategories()
}

// ListAdsByCategory returns one page of a category's ads, newest first
func (s *AdService) ListAdsByCategory(categorySlug string, page int) (*AdPage, error) {
	category, err := s.categoryRepo.GetCategoryBySlug(categorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if page < 1 {
		page = 1
	}

	ads, total, err := s.adRepo.ListAdsByCategory(category.ID, page, s.pageSize)
	if err != nil {
		logger.Log.Error("Failed to list ads",
			zap.String("category_slug", categorySlug),
			zap.Int("page", page),
			zap.Error(err),
		)
		return nil, err
	}

	return &AdPage{
		Ads:      ads,
		Page:     page,
		PageSize: s.pageSize,
		Total:    total,
	}, nil
}

func (s *AdService) GetAd(categorySlug, adSlug string) (*models.Ad, error) {
	ad, err := s.adRepo.GetAdBySlugAndCategory(adSlug, categorySlug)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, ErrAdNotFound
	}
	return ad, nil
}

func (s *AdService) CreateAd(userID uint, input AdInput) (*models.Ad, error) {
	if err := s.validateAdInput(input); err != nil {
		logger.Log.Warn("Ad validation failed",
			zap.Uint("user_id", userID),
			zap.String("title", input.Title),
			zap.Error(err),
		)
		return nil, err
	}

	category, err := s.categoryRepo.GetCategoryBySlug(input.CategorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	slug, err := s.resolveSlug(input.Title)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(input.Tags)
	if err != nil {
		return nil, err
	}

	ad := &models.Ad{
		Title:           input.Title,
		CategoryID:      category.ID,
		Slug:            slug,
		Image:           input.Image,
		Description:     input.Description,
		Location:        input.Location,
		PostalCode:      input.PostalCode,
		ContactInfo:     input.ContactInfo,
		Price:           input.Price,
		ShowContactInfo: input.ShowContactInfo,
		EventStartDate:  input.EventStartDate,
		EventEndDate:    input.EventEndDate,
		UserID:          userID,
		Tags:            tags,
	}

	if err := s.adRepo.CreateAd(ad); err != nil {
		logger.Log.Error("Failed to create ad",
			zap.Uint("user_id", userID),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Ad created",
		zap.Uint("ad_id", ad.ID),
		zap.Uint("user_id", userID),
		zap.String("slug", ad.Slug),
	)

	return ad, nil
}

// UpdateAd edits an ad owned by userID. A foreign owner gets ErrAdNotFound.
func (s *AdService) UpdateAd(userID uint, categorySlug, adSlug string, input AdInput) (*models.Ad, error) {
	ad, err := s.getOwnedAd(userID, categorySlug, adSlug)
	if err != nil {
		return nil, err
	}

	if err := s.validateAdInput(input); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetCategoryBySlug(input.CategorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	tags, err := s.resolveTags(input.Tags)
	if err != nil {
		return nil, err
	}

	ad.Title = input.Title
	ad.CategoryID = category.ID
	ad.Description = input.Description
	ad.Location = input.Location
	ad.PostalCode = input.PostalCode
	ad.ContactInfo = input.ContactInfo
	ad.Price = input.Price
	ad.ShowContactInfo = input.ShowContactInfo
	ad.EventStartDate = input.EventStartDate
	ad.EventEndDate = input.EventEndDate
	if input.Image != "" {
		ad.Image = input.Image
	}

	if err := s.adRepo.UpdateAd(ad); err != nil {
		logger.Log.Error("Failed to update ad",
			zap.Uint("ad_id", ad.ID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.adRepo.ReplaceTags(ad, tags); err != nil {
		return nil, err
	}
	ad.Tags = tags

	logger.Log.Info("Ad updated",
		zap.Uint("ad_id", ad.ID),
		zap.Uint("user_id", userID),
	)

	return ad, nil
}

func (s *AdService) DeleteAd(userID uint, categorySlug, adSlug string) error {
	ad, err := s.getOwnedAd(userID, categorySlug, adSlug)
	if err != nil {
		return err
	}

	if err := s.adRepo.DeleteAd(ad); err != nil {
		logger.Log.Error("Failed to delete ad",
			zap.Uint("ad_id", ad.ID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Ad deleted",
		zap.Uint("ad_id", ad.ID),
		zap.Uint("user_id", userID),
	)

	return nil
}

func (s *AdService) getOwnedAd(userID uint, categorySlug, adSlug string) (*models.Ad, error) {
	ad, err := s.adRepo.GetAdBySlugAndCategory(adSlug, categorySlug)
	if err != nil {
		return nil, err
	}
	if ad == nil || ad.UserID != userID {
		return nil, ErrAdNotFound
	}
	return ad, nil
}

func (s *AdService) resolveSlug(title string) (string, error) {
	slug := utils.Slugify(title)
	if slug == "" {
		return "", errors.New("title produces an empty slug")
	}

	exists, err := s.adRepo.SlugExists(slug)
	if err != nil {
		return "", err
	}
	if exists {
		slug = utils.UniqueSlug(slug)
	}

	return slug, nil
}

func (s *AdService) resolveTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		slug := utils.Slugify(name)
		if seen[slug] {
			continue
		}
		seen[slug] = true

		tag, err := s.adRepo.FindOrCreateTag(name, slug)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

func (s *AdService) validateAdInput(input AdInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		return errors.New("location is required")
	}
	if strings.TrimSpace(input.ContactInfo) == "" {
		return errors.New("contact info is required")
	}
	if input.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if len(input.PostalCode) < 5 {
		return errors.New("postal code must be at least 5 characters long")
	}
	if len(input.PostalCode) > 10 {
		return errors.New("postal code must not exceed 10 characters")
	}
	if input.EventStartDate != nil && input.EventEndDate != nil &&
		input.EventEndDate.Before(*input.EventStartDate) {
		return errors.New("the end date must be greater than the start date")
	}

	return nil
}
