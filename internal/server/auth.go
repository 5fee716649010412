package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// AuthConfig controls API authentication. Mode "none" disables auth; mode
// "api-key" requires a bearer token matching Key.
type AuthConfig struct {
	Mode string
	Key  string
}

// NewAuthMiddleware returns the auth middleware. Probe endpoints are always
// reachable without credentials.
func NewAuthMiddleware(cfg AuthConfig, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Mode == "none" {
			return c.Next()
		}

		path := c.Path()
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return problemResponse(c, fiber.StatusUnauthorized,
				"missing_auth", "Unauthorized",
				"Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return problemResponse(c, fiber.StatusUnauthorized,
				"invalid_auth", "Unauthorized",
				"Authorization header must use the Bearer scheme")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Key)) != 1 {
			logger.Warn().Str("ip", c.IP()).Msg("rejected api key")
			return problemResponse(c, fiber.StatusUnauthorized,
				"invalid_key", "Unauthorized",
				"Invalid API key")
		}
		return c.Next()
	}
}
