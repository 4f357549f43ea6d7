package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/middleware"
)

func (rt *Router) verificationRouter(r fiber.Router) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/verify-email", rt.verifyEmailByCode)
		authGroup.Get("/verify-email/:token", rt.verifyEmailByToken)
		authGroup.Post("/resend-verification", rt.resendVerification)
	}
}

func (rt *Router) verifyEmailByCode(c *fiber.Ctx) error {
	var req model.VerifyCodeReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Email == "" || req.Code == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "email and code are required", c.Path())
	}

	if err := rt.verification.VerifyByCode(req.Email, req.Code); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) verifyEmailByToken(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
	}
	if err := rt.verification.VerifyByToken(token); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

// resendVerification answers the same way for known and unknown addresses,
// only the cooldown produces a distinct error.
func (rt *Router) resendVerification(c *fiber.Ctx) error {
	var req model.ResendVerificationReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Email == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "email is required", c.Path())
	}

	if err := rt.verification.Resend(c.UserContext(), req.Email); err != nil {
		if errors.Is(err, errs.ErrState) {
			return http.WithRepErrMsg(c, http.RateLimited.Code, err.Error(), c.Path())
		}
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}
