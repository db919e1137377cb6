package middleware

import (
	"strings"

	"neurogen-backend/internal/config"
	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/pkg/jwt"
	"neurogen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("userName", claims.Name)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware. The
// message is what the rejected caller sees; an empty message falls
// back to a generic one.
func RoleMiddleware(message string, allowedRoles ...string) fiber.Handler {
	if message == "" {
		message = "You don't have permission to access this resource"
	}

	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Check if user's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, message)
	}
}

// DoctorOnly middleware allows only the DOCTOR role
func DoctorOnly(message string) fiber.Handler {
	return RoleMiddleware(message, string(domain.RoleDoctor))
}

// PatientOnly middleware allows only the PATIENT role
func PatientOnly(message string) fiber.Handler {
	return RoleMiddleware(message, string(domain.RolePatient))
}
