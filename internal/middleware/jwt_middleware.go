package middleware

import (
	"strings"

	"ingreedio/internal/models"
	"ingreedio/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// caller's identity is stored in the context for subsequent handlers.
func AuthRequired(parser TokenParser, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := parser.Parse(tokenString)
		if err != nil {
			log.WithField("error", err.Error()).Debug("JWT validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(identityKey, claims.Identity())
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuth(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c.Get("Authorization")); ok {
			if claims, err := parser.Parse(tokenString); err == nil {
				c.Locals(identityKey, claims.Identity())
			}
		}
		return c.Next()
	}
}

// RequireRole rejects callers that do not hold role. It must run after AuthRequired.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).HasRole(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by the auth middleware, or nil for
// anonymous requests.
func IdentityFrom(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(identityKey).(*models.Identity)
	return identity
}

// Expected format: "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
