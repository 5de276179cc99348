// Package rayid tags requests with a unique id for log correlation.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRayID carries the request id on requests and responses.
const HeaderRayID = "X-Ray-ID"

// New returns the middleware. A caller-provided X-Ray-ID is kept so
// ids can follow a request across services.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderRayID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals("ray_id", rid)
		c.Set(HeaderRayID, rid)

		return c.Next()
	}
}
