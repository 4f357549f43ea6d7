// Copyright 2025 Minija Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/service"
	"github.com/minija-farm/minija/pkg/ctx"
	httpx "github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/middleware"
	"github.com/minija-farm/minija/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Http *httpx.Http
	Ctx  *ctx.Context

	userService  *service.UserService
	orgService   *service.OrganizationService
	verification *service.VerificationService
}

func NewRouter(
	httpConf *httpx.Http,
	appCtx *ctx.Context,
	userService *service.UserService,
	orgService *service.OrganizationService,
	verification *service.VerificationService,
) *Router {
	return &Router{
		Http:         httpConf,
		Ctx:          appCtx,
		userService:  userService,
		orgService:   orgService,
		verification: verification,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(middleware.ExceptionMiddleware)
	app.Use(middleware.UnifiedResponseMiddleware())
	if rt.Http.AccessLog {
		app.Use(middleware.AccessLogMiddleware(rt.Http))
	}
	if rt.Http.PProf {
		app.Use(pprof.New())
	}
	if rt.Http.ExposeMetrics {
		app.Use(middleware.MetricsMiddleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	auth := middleware.AuthorizationMiddleware(
		rt.Http.Auth.SecretKey, rt.Http.Auth.RedisKeyPrefix, rt.Ctx.GetRedis())

	api := app.Group(rt.Http.ContextPath)
	{
		rt.authRouter(api, auth)
		rt.verificationRouter(api)
		rt.orgRouter(api, auth)
	}

	return app
}

// repErr translates a service error into the response code table. Not-found
// wins over authorization on purpose, membership checks already collapse
// the two.
func repErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code, err.Error(), c.Path())
	case errors.Is(err, errs.ErrNotFound):
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code, err.Error(), c.Path())
	case errors.Is(err, errs.ErrAuthorization):
		return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, err.Error(), c.Path())
	case errors.Is(err, errs.ErrConflict):
		return httpx.WithRepErrMsg(c, httpx.Conflict.Code, err.Error(), c.Path())
	case errors.Is(err, errs.ErrState):
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, err.Error(), c.Path())
	case errors.Is(err, errs.ErrDelivery):
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, err.Error(), c.Path())
	default:
		return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
	}
}
