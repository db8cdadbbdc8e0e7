package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pegasusmrx/store-backend/internal/utils"
)

const SessionCookie = "admin_session"

// AdminFromCookie guards admin routes: the session token lives in a cookie
// set by the login handler.
func AdminFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(SessionCookie)
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		token, err := jwt.ParseWithClaims(tokenStr, &utils.Claims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.ErrUnauthorized
		}

		claims, ok := token.Claims.(*utils.Claims)
		if !ok || claims.Role != "admin" {
			return fiber.ErrUnauthorized
		}

		return c.Next()
	}
}
