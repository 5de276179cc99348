// Package auth provides API key authentication middleware.
package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// HeaderApiKey is the header clients authenticate with.
const HeaderApiKey = "X-Api-Key"

// Config holds settings for the API key middleware.
type Config struct {
	// ApiKey is the expected key. Empty disables authentication.
	ApiKey string
}

// New validates the API key on protected routes. With no key
// configured every request passes, which is only meant for local use.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}

		provided := c.Get(HeaderApiKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing api key",
			})
		}

		return c.Next()
	}
}
