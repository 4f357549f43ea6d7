package middleware

import (
	"github.com/gofiber/fiber/v2"
	httpx "github.com/minija-farm/minija/pkg/http"
)

// UnifiedResponseMiddleware renders handler results set via
// c.Locals(DETAIL, value) or c.Locals(OPERATION, true) as the standard
// response envelope.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}

		if c.Response().StatusCode() != fiber.StatusOK {
			return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
		}

		if c.Response().StatusCode() >= fiber.StatusOK && c.Response().StatusCode() < fiber.StatusMultipleChoices {
			// handler already wrote a body, leave it alone
			if len(c.Response().Body()) > 0 {
				return nil
			}

			if detail := c.Locals(DETAIL); detail != nil {
				return httpx.WithRepJSON(c, detail)
			}

			if c.Locals(OPERATION) != nil {
				return httpx.WithRepNotDetail(c)
			}
		}

		return nil
	}
}
