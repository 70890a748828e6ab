package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-service/pkg/config"
)

func TestTokenRoundTrip(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	tenantID := uint(4)
	profileID := uint(9)
	token, err := GenerateToken("donor@example.org", 2, &tenantID, &profileID, "donor")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "donor@example.org", claims.Email)
	assert.Equal(t, uint(2), claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(4), *claims.TenantID)
	require.NotNil(t, claims.ProfileID)
	assert.Equal(t, uint(9), *claims.ProfileID)
	assert.Equal(t, "donor", claims.Role)
}

func TestValidateToken_Garbage(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_WrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := GenerateToken("a@b.c", 1, nil, nil, "")
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
