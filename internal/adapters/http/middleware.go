package http

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware computes a weak ETag from successful GET bodies and answers
// 304 when the client already has it.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

// CachingMiddleware sets a default Cache-Control on GET responses. User
// state changes on every tracking round, so user routes are never cached.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}

		path := c.Path()
		var value string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			value = "public, max-age=10"
		case path == "/metrics":
			value = "no-cache"
		case strings.HasPrefix(path, "/v1/attractions"):
			value = "public, max-age=300"
		case strings.HasPrefix(path, "/v1/users"), strings.HasPrefix(path, "/get"),
			strings.HasPrefix(path, "/v1/admin"):
			value = "private, no-store"
		}
		if value != "" {
			c.Set(fiber.HeaderCacheControl, value)
		}
		return err
	}
}

// LegacyRoute is a query-string endpoint kept for older clients.
type LegacyRoute struct {
	Path      string // e.g. /getRewards
	Successor string // e.g. /v1/users/{name}/rewards
}

// DeprecationMiddleware marks legacy routes with Deprecation and a
// successor-version Link header.
func DeprecationMiddleware(routes []LegacyRoute) fiber.Handler {
	byPath := make(map[string]string, len(routes))
	for _, r := range routes {
		byPath[r.Path] = r.Successor
	}
	return func(c *fiber.Ctx) error {
		if successor, ok := byPath[c.Path()]; ok {
			c.Set("Deprecation", "true")
			if successor != "" {
				c.Set(fiber.HeaderLink, fmt.Sprintf(`<%s>; rel="successor-version"`, successor))
			}
		}
		return c.Next()
	}
}
