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

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/internal/engine/repo"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/http/auth/jwt"
	"github.com/minija-farm/minija/pkg/id"
	"github.com/minija-farm/minija/pkg/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo     repo.IUserRepository
	orgService   *OrganizationService
	verification *VerificationService
}

func NewUserService(userRepo repo.IUserRepository, orgService *OrganizationService, verification *VerificationService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		orgService:   orgService,
		verification: verification,
	}
}

// Register creates the account in unverified state, provisions the user's
// default organization and sends the verification mail. The account cannot
// log in until the email is verified.
func (us *UserService) Register(ctx context.Context, register *model.Register) error {
	email := strings.ToLower(strings.TrimSpace(register.Email))
	if email == "" {
		return errs.Validationf("email is required")
	}
	if len(register.Password) < 8 {
		return errs.Validationf("password must be at least 8 characters")
	}

	if _, err := us.userRepo.GetByEmail(email); err == nil {
		return errs.Conflictf("email %s is already registered", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password, err := getPassword(register.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		UserId:    id.GetUUIDWithoutDashes(),
		Username:  register.Username,
		FirstName: register.FirstName,
		LastName:  register.LastName,
		Email:     email,
		Password:  string(password),
		IsActive:  false,
	}
	if user.FirstName == "" {
		user.FirstName = user.Username
	}
	if err := us.userRepo.Register(user); err != nil {
		return err
	}

	if _, err := us.orgService.CreateDefault(user); err != nil {
		log.ForContext(ctx).Errorw("failed to create default organization",
			"userId", user.UserId, "error", err)
	}

	return us.verification.Issue(ctx, user)
}

// Login authenticates by email and password. Unverified or deactivated
// accounts are rejected with a distinct state error so the client can offer
// the resend flow.
func (us *UserService) Login(login *model.Login, auth http.Auth) (*model.LoginResp, error) {
	user, err := us.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(login.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Authorizationf("incorrect email or password")
		}
		return nil, err
	}
	if !comparePassword(user.Password, login.Password) {
		return nil, errs.Authorizationf("incorrect email or password")
	}
	if !user.IsVerified {
		return nil, errs.Statef("email address is not verified")
	}
	if !user.IsActive {
		return nil, errs.Statef("account is deactivated")
	}

	aToken, rToken, err := jwt.GenToken(user.UserId, []byte(auth.SecretKey), auth.AccessExpire, auth.RefreshExpire)
	if err != nil {
		log.Errorw("failed to generate tokens", "userId", user.UserId, "error", err)
		return nil, err
	}

	if _, err := us.userRepo.SetToken(user.UserId, aToken, auth); err != nil {
		log.Errorw("failed to store token", "userId", user.UserId, "error", err)
		return nil, err
	}

	now := time.Now()
	resp := &model.LoginResp{
		UserInfo: model.UserInfo{
			UserId:    user.UserId,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Phone:     user.Phone,
		},
		Token: map[string]string{
			"accessToken":  aToken,
			"refreshToken": rToken,
			"expireAt":     fmt.Sprintf("%d", now.Add(auth.AccessExpire*time.Minute).Unix()),
			"createAt":     fmt.Sprintf("%d", now.Unix()),
		},
	}
	return resp, nil
}

func (us *UserService) Refresh(userId, rToken string, auth *http.Auth) (map[string]string, error) {
	token, err := jwt.RefreshToken(auth, userId, rToken)
	if err != nil {
		log.Errorw("failed to refresh token", "userId", userId, "error", err)
		return nil, err
	}

	expireAt := time.Now().Add(auth.AccessExpire * time.Minute).Unix()
	token["expireAt"] = fmt.Sprintf("%d", expireAt)

	if _, err := us.userRepo.SetToken(userId, token["accessToken"], *auth); err != nil {
		log.Errorw("failed to set token in Redis", "userId", userId, "error", err)
		return token, err
	}
	return token, nil
}

func (us *UserService) Logout(userId string, auth http.Auth) error {
	if err := us.userRepo.DelToken(userId, auth); err != nil {
		log.Errorw("failed to delete token", "userId", userId, "error", err)
		return err
	}
	return nil
}

func (us *UserService) FetchUserInfo(userId string) (*model.UserInfo, error) {
	return us.userRepo.FetchUserInfo(userId)
}

func getPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func comparePassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
