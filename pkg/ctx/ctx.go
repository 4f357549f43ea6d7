package ctx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context is the global application context handed to repos and services.
type Context struct {
	MySQLIns *gorm.DB
	RedisIns *redis.Client
	Ctx      context.Context
	Log      *zap.SugaredLogger
}

func NewContext(ctx context.Context, mysql *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger) *Context {
	return &Context{
		MySQLIns: mysql,
		RedisIns: rdb,
		Ctx:      ctx,
		Log:      log,
	}
}

func (c *Context) GetCtx() context.Context {
	return c.Ctx
}

func (c *Context) SetMySQLIns(db *gorm.DB) {
	c.MySQLIns = db
}

func (c *Context) GetMySQLIns() *gorm.DB {
	return c.MySQLIns
}

func (c *Context) SetRedis(client *redis.Client) {
	c.RedisIns = client
}

func (c *Context) GetRedis() *redis.Client {
	return c.RedisIns
}
