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
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/minija-farm/minija/internal/engine/config"
	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/internal/engine/repo"
	"github.com/minija-farm/minija/internal/pkg/notify"
	"github.com/minija-farm/minija/pkg/id"
	"github.com/minija-farm/minija/pkg/log"
	"gorm.io/gorm"
)

// VerificationService owns the email verification state on the user row.
// The numeric code expires and counts attempts; the link token stays valid
// until verification succeeds or a new code is issued.
type VerificationService struct {
	userRepo repo.IUserRepository
	notifier notify.Notifier
	conf     config.VerificationConfig
}

func NewVerificationService(userRepo repo.IUserRepository, notifier notify.Notifier, conf config.VerificationConfig) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
		notifier: notifier,
		conf:     conf,
	}
}

// Issue generates a fresh code and link token for the user, overwriting any
// previous ones, and sends the verification mail. A failed delivery leaves
// the stored state in place so the user can still verify by code.
func (vs *VerificationService) Issue(ctx context.Context, user *model.User) error {
	if user.IsVerified {
		return nil
	}

	code, err := generateCode(vs.conf.CodeLength)
	if err != nil {
		return err
	}
	token := id.GetUUID()
	now := time.Now()
	expiresAt := now.Add(time.Duration(vs.conf.CodeExpiryMinutes) * time.Minute)

	if err := vs.userRepo.SetVerification(user.UserId, code, token, expiresAt, now); err != nil {
		return err
	}

	mail := notify.VerificationMail{
		Email: user.Email,
		Name:  user.FullName(),
		Code:  code,
		Token: token,
	}
	if err := vs.notifier.SendVerification(ctx, mail); err != nil {
		log.ForContext(ctx).Errorw("verification mail delivery failed",
			"userId", user.UserId, "error", err)
		return errs.Deliveryf("verification mail to %s", user.Email)
	}
	return nil
}

// VerifyByCode checks the numeric code for the given email. Every check
// consumes an attempt before the comparison, so a correct code on the
// attempt after the cap is still rejected.
func (vs *VerificationService) VerifyByCode(email, code string) error {
	user, err := vs.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("user %s", email)
		}
		return err
	}
	if user.IsVerified {
		return nil
	}
	// The attempt cap wins over every other rejection: once capped, the
	// user is told to request a new code no matter what state the old
	// one is in.
	if user.Attempts >= vs.conf.MaxAttempts {
		return errs.Statef("too many failed attempts, request a new code")
	}
	if user.VerificationCode == "" {
		return errs.Statef("no verification pending for %s", email)
	}
	if user.CodeExpiresAt == nil || time.Now().After(*user.CodeExpiresAt) {
		return errs.Statef("verification code expired")
	}

	if err := vs.userRepo.IncrementAttempts(user.UserId); err != nil {
		return err
	}
	if user.VerificationCode != code {
		remaining := vs.conf.MaxAttempts - user.Attempts - 1
		if remaining < 0 {
			remaining = 0
		}
		return errs.Validationf("incorrect code, %d attempts remaining", remaining)
	}

	return vs.userRepo.MarkVerified(user.UserId)
}

// VerifyByToken verifies through the emailed link. The token does not
// expire; it dies only when verification succeeds or a new code replaces it.
func (vs *VerificationService) VerifyByToken(token string) error {
	user, err := vs.userRepo.GetByVerificationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("verification token")
		}
		return err
	}
	if user.IsVerified {
		return nil
	}
	return vs.userRepo.MarkVerified(user.UserId)
}

// Resend issues a new verification mail, honoring the cooldown window. The
// returned error never reveals whether the email is registered; an unknown
// address is reported as success.
func (vs *VerificationService) Resend(ctx context.Context, email string) error {
	user, err := vs.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.ForContext(ctx).Debugw("resend requested for unknown email", "email", email)
			return nil
		}
		return err
	}
	if user.IsVerified {
		return nil
	}
	if user.LastSentAt != nil {
		cooldown := time.Duration(vs.conf.ResendCooldownSeconds) * time.Second
		if elapsed := time.Since(*user.LastSentAt); elapsed < cooldown {
			return errs.Statef("please wait %d seconds before requesting another code",
				int((cooldown-elapsed).Seconds())+1)
		}
	}
	return vs.Issue(ctx, user)
}

// generateCode returns a zero-padded numeric code of the given length from
// crypto/rand.
func generateCode(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
