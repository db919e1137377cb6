package services

import (
	"context"
	"errors"
	"log"

	"neurogen-backend/internal/adapters/persistence/models"
	"neurogen-backend/internal/adapters/persistence/repositories"
	"neurogen-backend/internal/config"
	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/pkg/jwt"
	"neurogen-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// RegisterInput represents registration input. ID is chosen by the
// user (national ID for patients, staff ID for doctors).
type RegisterInput struct {
	ID          string  `json:"id" validate:"required"`
	Password    string  `json:"password" validate:"required,min=8"`
	Role        string  `json:"role" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Gender      string  `json:"gender"`
	Age         int     `json:"age"`
	Phone       string  `json:"phone"`
	Department  *string `json:"department"`
	Title       *string `json:"title"`
	Hospital    *string `json:"hospital"`
	Specialties *string `json:"specialties"`
}

// LoginInput represents login input. Role is declared by the client
// and must match the stored account.
type LoginInput struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *models.UserResponse `json:"user"`
	AccessToken string               `json:"access_token"`
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	// 1. Validate role against the closed enum
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	// 2. Validate credentials shape
	if input.ID == "" || input.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if !password.Validate(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	// 3. Check if the ID is already registered
	exists, err := s.userRepo.ExistsByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 4. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 5. Create user
	user := &models.User{
		ID:           input.ID,
		PasswordHash: hashedPassword,
		Role:         string(role),
		Name:         input.Name,
		Gender:       input.Gender,
		Age:          input.Age,
		Phone:        input.Phone,
		Department:   input.Department,
		Title:        input.Title,
		Hospital:     input.Hospital,
		Specialties:  input.Specialties,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s)", user.Name, user.Role)

	return user.ToResponse(), nil
}

// Login authenticates a user and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Validate declared role
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	// 2. Find user by ID. Unknown IDs get the same error as a wrong
	// password so login cannot be used to probe registered IDs.
	user, err := s.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. Verify password
	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	// 4. Verify declared role matches the account
	if user.Role != string(role) {
		return nil, domain.ErrRoleMismatch
	}

	// 5. Generate access token
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Name,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.ExpiryHours,
	)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.ID)

	return &AuthResponse{
		User:        user.ToResponse(),
		AccessToken: accessToken,
	}, nil
}

// GetProfile returns the profile for a user ID
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}
