package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/cagrik/pazarly/internal/models"
	"github.com/cagrik/pazarly/internal/repository"
	"github.com/cagrik/pazarly/internal/utils"
	"github.com/cagrik/pazarly/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserNotFound          = errors.New("user not found")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// RegisterInput carries the registration form: account fields plus the
// profile collected in the same step.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DateOfBirth time.Time
	PhoneNumber string
	UserType    models.UserType
	Address     string
}

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, environment string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", input.Username),
		zap.String("email", input.Email),
	)

	// 1. Validate input
	if err := s.validateRegisterInput(input); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", input.Username),
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 2. Check if email already exists
	existingUser, err := s.userRepo.GetUserByEmail(input.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		logger.Log.Warn("Email already exists",
			zap.String("email", input.Email),
		)
		return nil, "", ErrEmailAlreadyExists
	}

	// 3. Check if username already exists
	existingUser, err = s.userRepo.GetUserByUsername(input.Username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", input.Username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		logger.Log.Warn("Username already exists",
			zap.String("username", input.Username),
		)
		return nil, "", ErrUsernameAlreadyExists
	}

	// 4. Hash password (Argon2)
	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, "", err
	}
	hashDuration := time.Since(hashStart)

	// 5. Create user with profile
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Profile: models.Profile{
			DateOfBirth: input.DateOfBirth,
			PhoneNumber: input.PhoneNumber,
			UserType:    input.UserType,
			Address:     input.Address,
		},
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", input.Username),
			zap.String("email", input.Email),
			zap.Error(err),
		)
		return nil, "", err
	}

	// 6. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", input.Username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user login",
		zap.String("email", email),
	)

	// 1. Get user by email
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 2. Verify password
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("email", email),
			zap.Uint("user_id", user.ID),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 3. Generate JWT token
	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// GetUser resolves a user with their profile
func (s *AuthService) GetUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) validateRegisterInput(input RegisterInput) error {
	// Username validation
	if len(input.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(input.Username) > 50 {
		return errors.New("username must be at most 50 characters")
	}

	// Email validation (regex)
	if !emailRegex.MatchString(input.Email) {
		return errors.New("invalid email format")
	}
	if len(input.Email) > 100 {
		return errors.New("email too long")
	}

	// Password validation
	if len(input.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(input.Password) > 128 {
		return errors.New("password too long")
	}

	// Profile validation
	if len(input.PhoneNumber) == 0 || len(input.PhoneNumber) > 15 {
		return errors.New("phone number must be between 1 and 15 characters")
	}
	if input.DateOfBirth.IsZero() || input.DateOfBirth.After(time.Now()) {
		return errors.New("the date of birth cannot be in the future")
	}
	if input.UserType != models.UserTypeBuyer && input.UserType != models.UserTypeSeller {
		return errors.New("user type must be buyer or seller")
	}
	if input.Address == "" {
		return errors.New("address is required")
	}

	return nil
}
