package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUnverified(e *testEnv, userId, email string) *model.User {
	u := &model.User{
		UserId:   userId,
		Username: userId,
		Email:    email,
	}
	e.store.users[userId] = u
	return u
}

func TestIssueSendsMailAndStoresState(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")

	require.NoError(t, e.verification.Issue(context.Background(), u))

	stored := e.store.users["u1"]
	assert.Len(t, stored.VerificationCode, 6)
	require.NotNil(t, stored.VerificationToken)
	assert.NotNil(t, stored.CodeExpiresAt)
	require.Len(t, e.store.sentVerifications, 1)
	assert.Equal(t, stored.VerificationCode, e.store.sentVerifications[0].Code)
	assert.Equal(t, *stored.VerificationToken, e.store.sentVerifications[0].Token)
}

func TestVerifyByCode(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))
	code := e.store.users["u1"].VerificationCode

	require.NoError(t, e.verification.VerifyByCode("u1@example.com", code))

	stored := e.store.users["u1"]
	assert.True(t, stored.IsVerified)
	assert.True(t, stored.IsActive)
	assert.Empty(t, stored.VerificationCode)
	assert.Nil(t, stored.VerificationToken)
	assert.Nil(t, stored.CodeExpiresAt)
	assert.Zero(t, stored.Attempts)
}

func TestVerifyByCodeWrongCodeCountsAttempt(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))

	err := e.verification.VerifyByCode("u1@example.com", "000000")
	if err == nil {
		// one in a million, the random code really was 000000
		t.Skip("generated code collided with the guess")
	}
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, 1, e.store.users["u1"].Attempts)
}

func TestVerifyByCodeAttemptCapIsSticky(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))
	code := e.store.users["u1"].VerificationCode

	for i := 0; i < 5; i++ {
		err := e.verification.VerifyByCode("u1@example.com", "wrong!")
		require.ErrorIs(t, err, errs.ErrValidation)
	}

	// the correct code no longer works once the cap is hit
	err := e.verification.VerifyByCode("u1@example.com", code)
	assert.ErrorIs(t, err, errs.ErrState)
	assert.False(t, e.store.users["u1"].IsVerified)
}

func TestVerifyByCodeCapWinsOverExpiry(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))
	e.store.users["u1"].Attempts = 5
	past := time.Now().Add(-time.Minute)
	e.store.users["u1"].CodeExpiresAt = &past

	// a capped-out user is told to request a new code, not that the old
	// one expired
	err := e.verification.VerifyByCode("u1@example.com", "123456")
	assert.ErrorIs(t, err, errs.ErrState)
	assert.ErrorContains(t, err, "too many failed attempts")
	assert.Equal(t, 5, e.store.users["u1"].Attempts)
}

func TestVerifyByCodeExpired(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))
	past := time.Now().Add(-time.Minute)
	e.store.users["u1"].CodeExpiresAt = &past
	code := e.store.users["u1"].VerificationCode

	err := e.verification.VerifyByCode("u1@example.com", code)
	assert.ErrorIs(t, err, errs.ErrState)
}

func TestVerifyByCodeIdempotentWhenVerified(t *testing.T) {
	e := newTestEnv()
	e.seedUser("u1", "u1@example.com")

	assert.NoError(t, e.verification.VerifyByCode("u1@example.com", "whatever"))
}

func TestVerifyByCodeUnknownEmail(t *testing.T) {
	e := newTestEnv()
	err := e.verification.VerifyByCode("nobody@example.com", "123456")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestVerifyByTokenIgnoresCodeExpiry(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))
	past := time.Now().Add(-time.Hour)
	e.store.users["u1"].CodeExpiresAt = &past
	token := *e.store.users["u1"].VerificationToken

	require.NoError(t, e.verification.VerifyByToken(token))
	assert.True(t, e.store.users["u1"].IsVerified)
}

func TestVerifyByTokenUnknown(t *testing.T) {
	e := newTestEnv()
	err := e.verification.VerifyByToken("no-such-token")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestResendCooldown(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))

	err := e.verification.Resend(context.Background(), "u1@example.com")
	assert.ErrorIs(t, err, errs.ErrState)
	assert.Len(t, e.store.sentVerifications, 1)
}

func TestResendReplacesCodeAndToken(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	require.NoError(t, e.verification.Issue(context.Background(), u))
	oldCode := e.store.users["u1"].VerificationCode
	oldToken := *e.store.users["u1"].VerificationToken
	past := time.Now().Add(-2 * time.Minute)
	e.store.users["u1"].LastSentAt = &past

	require.NoError(t, e.verification.Resend(context.Background(), "u1@example.com"))

	stored := e.store.users["u1"]
	require.NotNil(t, stored.VerificationToken)
	assert.NotEqual(t, oldToken, *stored.VerificationToken)
	assert.Len(t, e.store.sentVerifications, 2)

	// the superseded code is dead even before its expiry
	if oldCode != stored.VerificationCode {
		err := e.verification.VerifyByCode("u1@example.com", oldCode)
		assert.Error(t, err)
		assert.False(t, e.store.users["u1"].IsVerified)
	}
}

func TestResendUnknownEmailLooksLikeSuccess(t *testing.T) {
	e := newTestEnv()
	assert.NoError(t, e.verification.Resend(context.Background(), "ghost@example.com"))
	assert.Empty(t, e.store.sentVerifications)
}

func TestGenerateCode(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			code, err := generateCode(length)
			require.NoError(t, err)
			require.Len(t, code, length)
			for _, r := range code {
				assert.True(t, r >= '0' && r <= '9', "code %q contains %q", code, r)
			}
			seen[code] = true
		}
		// 50 draws from 10^length values should not all collide
		assert.Greater(t, len(seen), 1)
	}
}

func TestIssueDeliveryFailureKeepsState(t *testing.T) {
	e := newTestEnv()
	u := seedUnverified(e, "u1", "u1@example.com")
	e.store.failDelivery = true

	err := e.verification.Issue(context.Background(), u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDelivery))
	assert.NotEmpty(t, e.store.users["u1"].VerificationCode)
}
