package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"civex/config"
	"civex/models"
	"civex/utils"
)

// Protected verifies the bearer credential and attaches the decoded claims
// to the request context. It never touches the database: 401 for a missing
// or expired token, 403 for a token that fails structural or signature
// checks.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication token is required", nil)
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Invalid token", nil)
		}

		claims, err := utils.ParseToken(tokenParts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Token has expired", nil)
			}
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Invalid token", nil)
		}

		c.Locals("claims", claims)
		c.Locals("userID", claims.UserID)

		return c.Next()
	}
}

// AdminOnly gates staff operations behind the account's admin flag. Runs
// after Protected, so the claims are already in the context.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*utils.Claims)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication token is required", nil)
		}

		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", nil)
		}

		if !user.IsAdmin {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Admin access required", nil)
		}

		c.Locals("user", &user)
		return c.Next()
	}
}
