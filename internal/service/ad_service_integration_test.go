package service_test

import (
	"fmt"
	"testing"

	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/cagrik/pazarly/internal/testutil"
	"github.com/cagrik/pazarly/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const adTestPageSize = 6

// AdServiceIntegrationTestSuite defines test suite
type AdServiceIntegrationTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	adService *service.AdService

	owner    *models.User
	stranger *models.User
	category *models.Category
}

// SetupSuite runs before all tests
func (s *AdServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
}

// TearDownSuite runs after all tests
func (s *AdServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *AdServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	adRepo := repository.NewAdRepository(s.testDB.DB)
	categoryRepo := repository.NewCategoryRepository(s.testDB.DB)
	s.adService = service.NewAdService(adRepo, categoryRepo, adTestPageSize)

	s.owner = testutil.CreateTestUser(s.T(), s.testDB.DB, "owner", "owner@example.com", "Pass12345")
	s.stranger = testutil.CreateTestUser(s.T(), s.testDB.DB, "stranger", "stranger@example.com", "Pass12345")
	s.category = testutil.CreateTestCategory(s.T(), s.testDB.DB, "Furniture", "furniture")
}

func (s *AdServiceIntegrationTestSuite) validInput(title string) service.AdInput {
	return service.AdInput{
		Title:        title,
		CategorySlug: s.category.Slug,
		Description:  "A sturdy oak table",
		Location:     "Ankara",
		PostalCode:   "06500",
		ContactInfo:  "owner@example.com",
		Price:        250,
	}
}

func (s *AdServiceIntegrationTestSuite) TestCreateAd() {
	input := s.validInput("Oak Dining Table")
	input.Tags = []string{"oak", "table", "Oak"} // duplicate tag collapses

	ad, err := s.adService.CreateAd(s.owner.ID, input)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "oak-dining-table", ad.Slug)
	assert.Equal(s.T(), s.owner.ID, ad.UserID)
	assert.Equal(s.T(), s.category.ID, ad.CategoryID)
	assert.Len(s.T(), ad.Tags, 2, "Tags repeated in the form should be stored once")
}

func (s *AdServiceIntegrationTestSuite) TestCreateAdSlugCollision() {
	first, err := s.adService.CreateAd(s.owner.ID, s.validInput("Oak Dining Table"))
	require.NoError(s.T(), err)

	second, err := s.adService.CreateAd(s.stranger.ID, s.validInput("Oak Dining Table"))
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "oak-dining-table", first.Slug)
	assert.NotEqual(s.T(), first.Slug, second.Slug, "Colliding titles must get distinct slugs")
	assert.Contains(s.T(), second.Slug, "oak-dining-table-", "Second slug should extend the first")
}

func (s *AdServiceIntegrationTestSuite) TestCreateAdValidation() {
	testCases := []struct {
		name   string
		mutate func(*service.AdInput)
	}{
		{"empty_title", func(in *service.AdInput) { in.Title = "  " }},
		{"empty_description", func(in *service.AdInput) { in.Description = "" }},
		{"empty_location", func(in *service.AdInput) { in.Location = "" }},
		{"empty_contact", func(in *service.AdInput) { in.ContactInfo = "" }},
		{"negative_price", func(in *service.AdInput) { in.Price = -1 }},
		{"postal_too_short", func(in *service.AdInput) { in.PostalCode = "1234" }},
		{"postal_too_long", func(in *service.AdInput) { in.PostalCode = "12345678901" }},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			input := s.validInput("Broken Ad")
			tc.mutate(&input)

			_, err := s.adService.CreateAd(s.owner.ID, input)
			assert.Error(s.T(), err)
		})
	}
}

func (s *AdServiceIntegrationTestSuite) TestCreateAdUnknownCategory() {
	input := s.validInput("Oak Dining Table")
	input.CategorySlug = "no-such-category"

	_, err := s.adService.CreateAd(s.owner.ID, input)
	assert.ErrorIs(s.T(), err, service.ErrCategoryNotFound)
}

func (s *AdServiceIntegrationTestSuite) TestGetAdRequiresMatchingCategory() {
	created, err := s.adService.CreateAd(s.owner.ID, s.validInput("Oak Dining Table"))
	require.NoError(s.T(), err)

	found, err := s.adService.GetAd(s.category.Slug, created.Slug)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, found.ID)

	other := testutil.CreateTestCategory(s.T(), s.testDB.DB, "Vehicles", "vehicles")
	_, err = s.adService.GetAd(other.Slug, created.Slug)
	assert.ErrorIs(s.T(), err, service.ErrAdNotFound, "Slug under the wrong category should not resolve")
}

func (s *AdServiceIntegrationTestSuite) TestUpdateAdByStrangerIsNotFound() {
	created, err := s.adService.CreateAd(s.owner.ID, s.validInput("Oak Dining Table"))
	require.NoError(s.T(), err)

	input := s.validInput("Hijacked Title")
	_, err = s.adService.UpdateAd(s.stranger.ID, s.category.Slug, created.Slug, input)
	assert.ErrorIs(s.T(), err, service.ErrAdNotFound)

	// Ownership failures leave the row untouched
	unchanged, err := s.adService.GetAd(s.category.Slug, created.Slug)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Oak Dining Table", unchanged.Title)
}

func (s *AdServiceIntegrationTestSuite) TestUpdateAdByOwner() {
	created, err := s.adService.CreateAd(s.owner.ID, s.validInput("Oak Dining Table"))
	require.NoError(s.T(), err)

	input := s.validInput("Walnut Dining Table")
	input.Price = 300
	input.Tags = []string{"walnut"}

	updated, err := s.adService.UpdateAd(s.owner.ID, s.category.Slug, created.Slug, input)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "Walnut Dining Table", updated.Title)
	assert.Equal(s.T(), created.Slug, updated.Slug, "Editing must not change the slug")
	assert.Equal(s.T(), float64(300), updated.Price)
	require.Len(s.T(), updated.Tags, 1)
	assert.Equal(s.T(), "walnut", updated.Tags[0].Slug)
}

func (s *AdServiceIntegrationTestSuite) TestDeleteAd() {
	created, err := s.adService.CreateAd(s.owner.ID, s.validInput("Oak Dining Table"))
	require.NoError(s.T(), err)

	err = s.adService.DeleteAd(s.stranger.ID, s.category.Slug, created.Slug)
	assert.ErrorIs(s.T(), err, service.ErrAdNotFound, "Strangers cannot delete")

	err = s.adService.DeleteAd(s.owner.ID, s.category.Slug, created.Slug)
	require.NoError(s.T(), err)

	_, err = s.adService.GetAd(s.category.Slug, created.Slug)
	assert.ErrorIs(s.T(), err, service.ErrAdNotFound)
}

func (s *AdServiceIntegrationTestSuite) TestListAdsByCategoryPagination() {
	for i := 0; i < adTestPageSize+2; i++ {
		_, err := s.adService.CreateAd(s.owner.ID, s.validInput(fmt.Sprintf("Chair Number %d", i)))
		require.NoError(s.T(), err)
	}

	page1, err := s.adService.ListAdsByCategory(s.category.Slug, 1)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page1.Ads, adTestPageSize)
	assert.Equal(s.T(), int64(adTestPageSize+2), page1.Total)

	page2, err := s.adService.ListAdsByCategory(s.category.Slug, 2)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page2.Ads, 2)

	// Page below 1 clamps to the first page
	clamped, err := s.adService.ListAdsByCategory(s.category.Slug, 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, clamped.Page)
	assert.Len(s.T(), clamped.Ads, adTestPageSize)
}

func (s *AdServiceIntegrationTestSuite) TestListAdsUnknownCategory() {
	_, err := s.adService.ListAdsByCategory("no-such-category", 1)
	assert.ErrorIs(s.T(), err, service.ErrCategoryNotFound)
}

// TestSuite runs all tests in the suite
func TestAdServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AdServiceIntegrationTestSuite))
}
