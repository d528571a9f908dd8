package service_test

import (
	"testing"
	"time"

	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/internal/service"
	"github.com/cagrik/pazarly/internal/testutil"
	"github.com/cagrik/pazarly/internal/utils"
	"github.com/cagrik/pazarly/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AuthServiceIntegrationTestSuite defines test suite
type AuthServiceIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	authService *service.AuthService
}

// SetupSuite runs before all tests
func (s *AuthServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
}

// TearDownSuite runs after all tests
func (s *AuthServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *AuthServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	userRepo := repository.NewUserRepository(s.testDB.DB)
	s.authService = service.NewAuthService(userRepo, "test-secret-key", time.Hour, "test")
}

func validRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		Username:    "newuser",
		Email:       "newuser@example.com",
		Password:    "SecurePass123!",
		DateOfBirth: time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "05551234567",
		UserType:    models.UserTypeBuyer,
		Address:     "Kizilay, Ankara",
	}
}

func (s *AuthServiceIntegrationTestSuite) TestRegisterSuccess() {
	input := validRegisterInput()

	user, token, err := s.authService.Register(input)

	require.NoError(s.T(), err)
	require.NotNil(s.T(), user)
	assert.NotZero(s.T(), user.ID)
	assert.Equal(s.T(), input.Username, user.Username)
	assert.NotEqual(s.T(), input.Password, user.PasswordHash, "Password must be stored hashed")

	// The returned token authenticates the new user
	claims, err := utils.ValidateToken(token, "test-secret-key")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, claims.UserID)

	// The profile is created in the same step
	fetched, err := s.authService.GetUser(user.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.UserTypeBuyer, fetched.Profile.UserType)
	assert.Equal(s.T(), input.Address, fetched.Profile.Address)
}

func (s *AuthServiceIntegrationTestSuite) TestRegisterDuplicateEmail() {
	_, _, err := s.authService.Register(validRegisterInput())
	require.NoError(s.T(), err)

	input := validRegisterInput()
	input.Username = "otheruser"

	_, _, err = s.authService.Register(input)
	assert.ErrorIs(s.T(), err, service.ErrEmailAlreadyExists)
}

func (s *AuthServiceIntegrationTestSuite) TestRegisterDuplicateUsername() {
	_, _, err := s.authService.Register(validRegisterInput())
	require.NoError(s.T(), err)

	input := validRegisterInput()
	input.Email = "other@example.com"

	_, _, err = s.authService.Register(input)
	assert.ErrorIs(s.T(), err, service.ErrUsernameAlreadyExists)
}

func (s *AuthServiceIntegrationTestSuite) TestRegisterValidation() {
	testCases := []struct {
		name   string
		mutate func(*service.RegisterInput)
	}{
		{"short_username", func(in *service.RegisterInput) { in.Username = "ab" }},
		{"invalid_email", func(in *service.RegisterInput) { in.Email = "not-an-email" }},
		{"short_password", func(in *service.RegisterInput) { in.Password = "short" }},
		{"empty_phone", func(in *service.RegisterInput) { in.PhoneNumber = "" }},
		{"long_phone", func(in *service.RegisterInput) { in.PhoneNumber = "0555123456789012" }},
		{"future_birth_date", func(in *service.RegisterInput) { in.DateOfBirth = time.Now().Add(24 * time.Hour) }},
		{"zero_birth_date", func(in *service.RegisterInput) { in.DateOfBirth = time.Time{} }},
		{"bad_user_type", func(in *service.RegisterInput) { in.UserType = "admin" }},
		{"empty_address", func(in *service.RegisterInput) { in.Address = "" }},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			input := validRegisterInput()
			tc.mutate(&input)

			_, _, err := s.authService.Register(input)
			assert.Error(s.T(), err)
		})
	}
}

func (s *AuthServiceIntegrationTestSuite) TestLoginSuccess() {
	input := validRegisterInput()
	registered, _, err := s.authService.Register(input)
	require.NoError(s.T(), err)

	user, token, err := s.authService.Login(input.Email, input.Password)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), registered.ID, user.ID)
	assert.NotEmpty(s.T(), token)
}

func (s *AuthServiceIntegrationTestSuite) TestLoginWrongPassword() {
	input := validRegisterInput()
	_, _, err := s.authService.Register(input)
	require.NoError(s.T(), err)

	_, _, err = s.authService.Login(input.Email, "WrongPass123!")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)
}

func (s *AuthServiceIntegrationTestSuite) TestLoginUnknownEmail() {
	// Unknown email and wrong password are indistinguishable to the caller
	_, _, err := s.authService.Login("nobody@example.com", "SecurePass123!")
	assert.ErrorIs(s.T(), err, service.ErrInvalidCredentials)
}

func (s *AuthServiceIntegrationTestSuite) TestGetUserNotFound() {
	_, err := s.authService.GetUser(12345)
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)
}

// TestSuite runs all tests in the suite
func TestAuthServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceIntegrationTestSuite))
}
