package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestGenAndParseToken(t *testing.T) {
	aToken, rToken, err := GenToken("user-1", []byte(testSecret), 30, 60)
	require.NoError(t, err)
	require.NotEmpty(t, aToken)
	require.NotEmpty(t, rToken)

	claims, err := ParseToken(aToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserId)
	assert.Equal(t, "minija", claims.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	aToken, _, err := GenToken("user-1", []byte(testSecret), 30, 60)
	require.NoError(t, err)

	_, err = ParseToken(aToken, "another-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	aToken, _, err := GenToken("user-1", []byte(testSecret), -time.Duration(1), 60)
	require.NoError(t, err)

	_, err = ParseToken(aToken, testSecret)
	assert.Error(t, err)
}
