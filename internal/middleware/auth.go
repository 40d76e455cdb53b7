package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// BearerAuth guards moderation routes with an HS256 bearer token issued by
// the platform's auth service. When no secret is configured the guard is a
// pass-through, matching the anonymous feature's default deployment.
func BearerAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		h := c.Get("Authorization")
		const pref = "Bearer "
		if !strings.HasPrefix(h, pref) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing auth"})
		}
		token, err := jwt.Parse(h[len(pref):], func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		if sub, err := token.Claims.GetSubject(); err == nil {
			c.Locals("user_id", sub)
		}
		return c.Next()
	}
}
