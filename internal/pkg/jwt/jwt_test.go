package jwt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("patient_demo", "李患者", "PATIENT", testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "patient_demo", claims.UserID)
	assert.Equal(t, "李患者", claims.Name)
	assert.Equal(t, "PATIENT", claims.Role)
	assert.Equal(t, "patient_demo", claims.Subject)
	assert.Equal(t, "neurogen-backend", claims.Issuer)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("u1", "name", "DOCTOR", testSecret, 24)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "another-secret")
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestValidateAccessToken_Expired(t *testing.T) {
	// Negative expiry yields a token that is already expired
	token, err := GenerateAccessToken("u1", "name", "DOCTOR", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", testSecret)
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}
