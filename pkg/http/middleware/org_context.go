package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/auth/jwt"
)

// ORG_ID is the locals key holding the resolved organization id.
const ORG_ID = "orgId"

// OrgContextMiddleware resolves the caller's organization once per request:
// the :orgId path parameter wins, then the X-Organization-ID header, then
// the fallback resolver (typically the user's first active org). Runs after
// AuthorizationMiddleware.
func OrgContextMiddleware(fallback func(userId string) (string, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgId := c.Params("orgId")
		if orgId == "" {
			orgId = c.Get("X-Organization-ID")
		}
		if orgId == "" {
			claims, ok := c.Locals(CLAIMS).(*jwt.AuthClaims)
			if !ok {
				return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
			}
			var err error
			orgId, err = fallback(claims.UserId)
			if err != nil {
				return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
			}
		}
		c.Locals(ORG_ID, orgId)
		return c.Next()
	}
}
