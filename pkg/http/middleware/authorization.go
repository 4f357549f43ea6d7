package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/auth/jwt"
	"github.com/minija-farm/minija/pkg/log"
	"github.com/redis/go-redis/v9"
)

// Locals keys shared between handlers and the unified response middleware.
const (
	DETAIL    = "detail"
	OPERATION = "operation"
	CLAIMS    = "claims"
)

// AuthorizationMiddleware validates the Bearer token and checks that a live
// session for the user still exists in Redis.
func AuthorizationMiddleware(secretKey, redisKeyPrefix string, client *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get("Authorization")
		if aToken == "" {
			return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
			log.Errorf("parse token failed: %v", err)
			return http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
		}

		// session must still exist in Redis
		tokenKey := redisKeyPrefix + claims.UserId
		exists, err := client.Exists(context.Background(), tokenKey).Result()
		if err != nil {
			log.Errorf("redis check token exists failed: %v", err)
			return http.WithRepErrMsg(c, http.InternalError.Code, http.InternalError.Msg, c.Path())
		}
		if exists == 0 {
			return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
		}

		c.Locals(CLAIMS, claims)
		return c.Next()
	}
}
