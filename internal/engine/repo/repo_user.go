package repo

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/minija-farm/minija/internal/engine/consts"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/cache"
	"github.com/minija-farm/minija/pkg/database"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/log"
	"gorm.io/gorm"
)

type IUserRepository interface {
	Register(user *model.User) error
	GetByEmail(email string) (*model.User, error)
	GetByUserId(userId string) (*model.User, error)
	GetByVerificationToken(token string) (*model.User, error)
	FetchUserInfo(userId string) (*model.UserInfo, error)

	// verification state, written only by the verification service
	SetVerification(userId, code, token string, expiresAt, sentAt time.Time) error
	IncrementAttempts(userId string) error
	MarkVerified(userId string) error

	// session tokens, kept in Redis
	SetToken(userId, aToken string, auth http.Auth) (string, error)
	GetToken(userId string, auth http.Auth) (string, error)
	DelToken(userId string, auth http.Auth) error
}

type UserRepo struct {
	db    database.IDatabase
	cache cache.ICache
}

func NewUserRepo(db database.IDatabase, cache cache.ICache) IUserRepository {
	return &UserRepo{db: db, cache: cache}
}

func (ur *UserRepo) Register(user *model.User) error {
	return ur.db.Database().Create(user).Error
}

func (ur *UserRepo) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := ur.db.Database().Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *UserRepo) GetByUserId(userId string) (*model.User, error) {
	var user model.User
	err := ur.db.Database().Where("user_id = ?", userId).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *UserRepo) GetByVerificationToken(token string) (*model.User, error) {
	var user model.User
	err := ur.db.Database().Where("verification_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchUserInfo reads user info through the Redis cache, falling back to
// the database and repopulating on a miss.
func (ur *UserRepo) FetchUserInfo(userId string) (*model.UserInfo, error) {
	ctx := context.Background()
	key := consts.UserInfoKey + userId

	if ur.cache != nil {
		userInfoStr, err := ur.cache.Get(ctx, key).Result()
		if err == nil && userInfoStr != "" {
			u := &model.UserInfo{}
			if err := sonic.UnmarshalString(userInfoStr, u); err != nil {
				log.Errorw("failed to unmarshal user info from Redis", "userId", userId, "error", err)
			} else {
				return u, nil
			}
		}
	}

	user, err := ur.GetByUserId(userId)
	if err != nil {
		return nil, err
	}
	u := &model.UserInfo{
		UserId:    user.UserId,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}

	if ur.cache != nil {
		if s, err := sonic.MarshalString(u); err == nil {
			ur.cache.Set(ctx, key, s, 30*time.Minute)
		}
	}
	return u, nil
}

// SetVerification replaces the code/token/expiry triple atomically and
// resets the attempt counter.
func (ur *UserRepo) SetVerification(userId, code, token string, expiresAt, sentAt time.Time) error {
	return ur.db.Database().Model(&model.User{}).
		Where("user_id = ?", userId).
		Updates(map[string]interface{}{
			"verification_code":  code,
			"verification_token": token,
			"code_expires_at":    expiresAt,
			"attempts":           0,
			"last_sent_at":       sentAt,
		}).Error
}

func (ur *UserRepo) IncrementAttempts(userId string) error {
	return ur.db.Database().Model(&model.User{}).
		Where("user_id = ?", userId).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}

// MarkVerified clears all verification fields and activates the user.
func (ur *UserRepo) MarkVerified(userId string) error {
	return ur.db.Database().Model(&model.User{}).
		Where("user_id = ?", userId).
		Updates(map[string]interface{}{
			"is_verified":        true,
			"is_active":          true,
			"verification_code":  "",
			"verification_token": nil,
			"code_expires_at":    nil,
			"attempts":           0,
		}).Error
}

func (ur *UserRepo) SetToken(userId, aToken string, auth http.Auth) (string, error) {
	key := auth.RedisKeyPrefix + userId
	err := ur.cache.Set(context.Background(), key, aToken, auth.AccessExpire*time.Minute).Err()
	if err != nil {
		return "", err
	}
	return key, nil
}

func (ur *UserRepo) GetToken(userId string, auth http.Auth) (string, error) {
	key := auth.RedisKeyPrefix + userId
	return ur.cache.Get(context.Background(), key).Result()
}

func (ur *UserRepo) DelToken(userId string, auth http.Auth) error {
	key := auth.RedisKeyPrefix + userId
	return ur.cache.Del(context.Background(), key, consts.UserInfoKey+userId).Err()
}
