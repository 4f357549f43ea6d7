package service

import (
	"context"
	"testing"

	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = http.Auth{
	SecretKey:      "test-secret",
	AccessExpire:   30,
	RefreshExpire:  1440,
	RedisKeyPrefix: "minija:user:token:",
}

func register(t *testing.T, e *testEnv, email string) *model.User {
	t.Helper()
	err := e.users.Register(context.Background(), &model.Register{
		Username: "jonas",
		Email:    email,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	u, err := (&fakeUserRepo{s: e.store}).GetByEmail(email)
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	e := newTestEnv()
	u := register(t, e, "jonas@example.com")

	assert.False(t, u.IsVerified)
	assert.False(t, u.IsActive)
	assert.NotEqual(t, "hunter2hunter2", u.Password)

	// default organization with the user as owner
	orgs, err := e.orgs.ListByUser(u.UserId)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, u.UserId, orgs[0].OwnerUserId)

	// verification mail went out
	require.Len(t, e.store.sentVerifications, 1)
	assert.Equal(t, "jonas@example.com", e.store.sentVerifications[0].Email)
}

func TestRegisterWhileAnotherSignupAwaitsIssue(t *testing.T) {
	e := newTestEnv()
	// a signup whose verification mail has not been issued yet; its
	// token column is NULL, not a shared zero value
	e.store.users["pending"] = &model.User{
		UserId:   "pending",
		Username: "pending",
		Email:    "pending@example.com",
	}

	u := register(t, e, "jonas@example.com")
	require.NotNil(t, u.VerificationToken)
	assert.Nil(t, e.store.users["pending"].VerificationToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv()
	register(t, e, "jonas@example.com")

	err := e.users.Register(context.Background(), &model.Register{
		Username: "other",
		Email:    "Jonas@Example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestRegisterWeakPassword(t *testing.T) {
	e := newTestEnv()
	err := e.users.Register(context.Background(), &model.Register{
		Username: "jonas",
		Email:    "jonas@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestLoginUnverified(t *testing.T) {
	e := newTestEnv()
	register(t, e, "jonas@example.com")

	_, err := e.users.Login(&model.Login{
		Email:    "jonas@example.com",
		Password: "hunter2hunter2",
	}, testAuth)
	assert.ErrorIs(t, err, errs.ErrState)
}

func TestLoginAfterVerification(t *testing.T) {
	e := newTestEnv()
	u := register(t, e, "jonas@example.com")
	require.NoError(t, e.verification.VerifyByCode("jonas@example.com", e.store.users[u.UserId].VerificationCode))

	resp, err := e.users.Login(&model.Login{
		Email:    "jonas@example.com",
		Password: "hunter2hunter2",
	}, testAuth)
	require.NoError(t, err)
	assert.Equal(t, u.UserId, resp.UserInfo.UserId)
	assert.NotEmpty(t, resp.Token["accessToken"])
	assert.NotEmpty(t, resp.Token["refreshToken"])
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv()
	u := register(t, e, "jonas@example.com")
	require.NoError(t, e.verification.VerifyByCode("jonas@example.com", e.store.users[u.UserId].VerificationCode))

	_, err := e.users.Login(&model.Login{
		Email:    "jonas@example.com",
		Password: "wrong-password",
	}, testAuth)
	assert.ErrorIs(t, err, errs.ErrAuthorization)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	e := newTestEnv()
	_, err := e.users.Login(&model.Login{
		Email:    "ghost@example.com",
		Password: "whatever123",
	}, testAuth)
	assert.ErrorIs(t, err, errs.ErrAuthorization)
}
