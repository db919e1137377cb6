package handlers

import (
	"errors"
	"strings"

	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/core/services"
	"neurogen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	ID          string  `json:"id"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	Name        string  `json:"name"`
	Gender      string  `json:"gender"`
	Age         int     `json:"age"`
	Phone       string  `json:"phone"`
	Department  *string `json:"department"`
	Title       *string `json:"title"`
	Hospital    *string `json:"hospital"`
	Specialties *string `json:"specialties"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new doctor or patient account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.ID == "" {
		return response.BadRequest(c, "ID is required")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}
	if len(req.Password) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	// Register user
	input := &services.RegisterInput{
		ID:          strings.TrimSpace(req.ID),
		Password:    req.Password,
		Role:        strings.TrimSpace(req.Role),
		Name:        strings.TrimSpace(req.Name),
		Gender:      req.Gender,
		Age:         req.Age,
		Phone:       req.Phone,
		Department:  req.Department,
		Title:       req.Title,
		Hospital:    req.Hospital,
		Specialties: req.Specialties,
	}

	user, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Role must be DOCTOR or PATIENT")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid registration data")
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return response.Conflict(c, "该 ID 已被注册")
		default:
			return response.InternalServerError(c, "注册失败，请重试")
		}
	}

	return response.Created(c, "User registered successfully", fiber.Map{
		"user": user,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user with ID, password, and declared role
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.ID == "" {
		return response.BadRequest(c, "ID is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	// Login
	input := &services.LoginInput{
		ID:       strings.TrimSpace(req.ID),
		Password: req.Password,
		Role:     strings.TrimSpace(req.Role),
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Role must be DOCTOR or PATIENT")
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "账号或密码错误 (未注册请先注册)")
		case errors.Is(err, domain.ErrRoleMismatch):
			if input.Role == string(domain.RoleDoctor) {
				return response.Forbidden(c, "该账号不是医生账号")
			}
			return response.Forbidden(c, "该账号不是患者账号")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"user":         result.User,
	})
}

// Me returns the current user profile
// @Summary Get current user
// @Description Get the currently authenticated user's profile
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}
