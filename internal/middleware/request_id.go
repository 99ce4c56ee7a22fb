package middleware

import (
	"time"

	"SupportDesk/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "X-Request-ID"

// NewRequestIDMiddleware tags every request with an id so a chat turn can
// be followed from the handler through the session store and transcript
// writes. Clients may supply their own; otherwise a ULID is minted, which
// keeps ids sortable by arrival time in the logs.
func NewRequestIDMiddleware() fiber.Handler {
	idGen := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if requestID == "" {
			requestID, _ = idGen.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
