package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/listado/internal/config"
	"github.com/example/listado/internal/utils"
)

const operatorContextKey = "currentOperatorID"

// AuthMiddleware validates JWT tokens and loads the acting operator's ID into
// context so handlers can stamp audit fields.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		operatorID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(operatorContextKey, operatorID)
		return c.Next()
	}
}

// GetOperatorID extracts the authenticated operator's ID from context.
func GetOperatorID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(operatorContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
