package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/log"
)

// ExceptionMiddleware recovers from panics and returns a 500 envelope
// instead of leaking a stack trace to the client.
func ExceptionMiddleware(c *fiber.Ctx) error {
	defer func() {
		if err := recover(); err != nil {
			_ = http.WithRepErr(c, http.InternalError.Code, errorToString(err), c.Path())
			log.Errorf("panic: %v", err)
		}
	}()

	return c.Next()
}

func errorToString(err any) string {
	switch v := err.(type) {
	case http.ResponseErr:
		if errMsg, ok := v.ErrMsg.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	case error:
		log.Errorf("panic: %v\n%s", v, debug.Stack())
		return http.InternalError.Msg
	default:
		if errMsg, ok := v.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	}
}
