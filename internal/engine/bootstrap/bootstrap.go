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

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/internal/engine/config"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/internal/engine/repo"
	"github.com/minija-farm/minija/internal/engine/router"
	"github.com/minija-farm/minija/internal/engine/service"
	"github.com/minija-farm/minija/internal/pkg/notify"
	"github.com/minija-farm/minija/pkg/cache"
	"github.com/minija-farm/minija/pkg/ctx"
	"github.com/minija-farm/minija/pkg/database"
	httpx "github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/log"
	"github.com/robfig/cron/v3"
)

// App holds the wired application.
type App struct {
	HttpApp *fiber.App
	Cron    *cron.Cron
	AppConf config.AppConfig
}

// NewApp wires storage, services and the router from the configuration.
func NewApp(appConf config.AppConfig) (*App, func(), error) {
	db, err := database.NewDatabase(appConf.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrganizationMember{},
		&model.OrganizationInvitation{},
	); err != nil {
		return nil, nil, err
	}

	rdb, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		return nil, nil, err
	}

	appCtx := ctx.NewContext(context.Background(), db, rdb, log.GetLogger())

	gormDB := database.NewGormDB(db)
	redisCache := cache.NewRedisCache(rdb)

	userRepo := repo.NewUserRepo(gormDB, redisCache)
	orgRepo := repo.NewOrganizationRepo(gormDB)
	memberRepo := repo.NewOrganizationMemberRepo(gormDB)
	invRepo := repo.NewOrganizationInvitationRepo(gormDB)

	var notifier notify.Notifier
	if appConf.Smtp.Host != "" {
		notifier = notify.NewSMTPNotifier(appConf.Smtp)
	} else {
		log.Warn("no smtp host configured, mail goes to the log")
		notifier = notify.NewLogNotifier()
	}

	verification := service.NewVerificationService(userRepo, notifier, appConf.Verification)
	orgService := service.NewOrganizationService(
		orgRepo, memberRepo, invRepo, userRepo, notifier, appConf.Invitation)
	userService := service.NewUserService(userRepo, orgService, verification)

	rt := router.NewRouter(&appConf.Http, appCtx, userService, orgService, verification)

	// hourly sweep backing the lazy invitation expiry
	c := cron.New()
	if _, err := c.AddFunc("@hourly", orgService.ExpireOverdueInvitations); err != nil {
		return nil, nil, err
	}

	app := &App{
		HttpApp: rt.Router(),
		Cron:    c,
		AppConf: appConf,
	}

	cleanup := func() {
		c.Stop()
		if err := rdb.Close(); err != nil {
			log.Errorf("redis close failed: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return app, cleanup, nil
}

// Run starts the HTTP server and the cron sweep, then blocks until an exit
// signal arrives and shuts down in order.
func Run(app *App, cleanup func()) {
	app.Cron.Start()
	httpClean := httpx.NewHttp(app.AppConf.Http, app.HttpApp)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-quit
	log.Infof("received signal: %v, shutting down gracefully...", sig)

	httpClean()
	cleanup()
	log.Info("server shutdown complete")
}
