package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/auth/jwt"
	"github.com/minija-farm/minija/pkg/http/middleware"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/register", rt.register)
		authGroup.Post("/login", rt.login)

		authGroup.Post("/logout", auth, rt.logout)
		authGroup.Get("/refresh", auth, rt.refresh)
		authGroup.Get("/userinfo", auth, rt.getUserInfo)
	}
}

// currentUserId reads the authenticated user from the claims set by the
// authorization middleware.
func currentUserId(c *fiber.Ctx) (string, bool) {
	claims, ok := c.Locals(middleware.CLAIMS).(*jwt.AuthClaims)
	if !ok {
		return "", false
	}
	return claims.UserId, true
}

func (rt *Router) register(c *fiber.Ctx) error {
	var register model.Register
	if err := c.BodyParser(&register); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}

	if err := rt.userService.Register(c.UserContext(), &register); err != nil {
		return repErr(c, err)
	}

	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) login(c *fiber.Ctx) error {
	var login model.Login
	if err := c.BodyParser(&login); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code,
			http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if login.Email == "" || login.Password == "" {
		return http.WithRepErrMsg(c, http.UsernameArePasswordIsRequired.Code,
			http.UsernameArePasswordIsRequired.Msg, c.Path())
	}

	resp, err := rt.userService.Login(&login, rt.Http.Auth)
	if err != nil {
		return repErr(c, err)
	}

	c.Locals(middleware.DETAIL, resp)
	return nil
}

func (rt *Router) logout(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	if err := rt.userService.Logout(userId, rt.Http.Auth); err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	refreshToken := c.Query("refreshToken")
	if refreshToken == "" {
		return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
	}

	token, err := rt.userService.Refresh(userId, refreshToken, &rt.Http.Auth)
	if err != nil {
		return repErr(c, err)
	}

	c.Locals(middleware.DETAIL, token)
	return nil
}

func (rt *Router) getUserInfo(c *fiber.Ctx) error {
	userId, ok := currentUserId(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	info, err := rt.userService.FetchUserInfo(userId)
	if err != nil {
		return repErr(c, err)
	}
	c.Locals(middleware.DETAIL, info)
	return nil
}
