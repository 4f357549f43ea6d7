package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/minija-farm/minija/pkg/log"
)

type Http struct {
	Host            string
	Port            int
	ContextPath     string
	PProf           bool
	ExposeMetrics   bool
	AccessLog       bool
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

type Auth struct {
	SecretKey      string
	AccessExpire   time.Duration
	RefreshExpire  time.Duration
	RedisKeyPrefix string
}

// NewHttp starts the fiber app and returns a shutdown func for the caller
// to invoke once the exit signal arrives.
func NewHttp(cfg Http, app *fiber.App) func() {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	go func() {
		log.Infof("http server start at: %s", addr)
		var err error
		if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			err = app.ListenTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = app.Listen(addr)
		}
		if err != nil {
			log.Fatalf("http server error: %v", err)
		}
	}()

	return func() {
		log.Info("http server shutting down...")
		timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			log.Errorf("http server shutdown failed: %v", err)
			return
		}
		log.Info("http server stopped")
	}
}
