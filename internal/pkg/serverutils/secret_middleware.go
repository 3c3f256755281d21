package serverutils

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// SecretMiddleware guards paired-client routes. The secret travels as a
// query parameter because EventSource clients cannot set headers; a
// X-State-Secret header is accepted for command requests.
func SecretMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		provided := ctx.Query("secret")
		if provided == "" {
			provided = ctx.Get("X-State-Secret")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("invalid or missing secret"))
		}
		return ctx.Next()
	}
}
