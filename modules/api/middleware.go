package api

import (
	"strings"

	domain "github.com/example/beverage-storefront/domain/user"
	"github.com/example/beverage-storefront/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// AuthMiddleware creates a middleware that validates JWT tokens.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return unauthorized(c, "Authorization header is required")
		}

		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware attaches claims when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if claims, err := authAdapter.ValidateToken(c.UserContext(), token); err == nil {
				c.Locals(UserContextKey, claims)
			}
		}
		return c.Next()
	}
}

// AdminOnly rejects requests whose claims do not carry the admin role.
// It must run after AuthMiddleware.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !claimsFrom(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error:   "forbidden",
				Message: "Admin role required",
			})
		}
		return c.Next()
	}
}

// claimsFrom returns the caller's claims, or nil for anonymous requests.
func claimsFrom(c *fiber.Ctx) *domain.Claims {
	claims, _ := c.Locals(UserContextKey).(*domain.Claims)
	return claims
}

// roleOf returns the caller's role, empty for anonymous requests.
func roleOf(c *fiber.Ctx) domain.Role {
	if claims := claimsFrom(c); claims != nil {
		return claims.Role
	}
	return ""
}

// userKey limits authenticated routes per user.
func userKey(c *fiber.Ctx) string {
	if claims := claimsFrom(c); claims != nil {
		return claims.UserID
	}
	return ""
}
