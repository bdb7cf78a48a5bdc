package jwtutil

import (
	"testing"

	"github.com/dogmatus07/lynkevo-insights/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("jane@example.com", 42, true, false)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.IsStaff)
	assert.False(t, claims.IsSuperuser)
	assert.True(t, claims.IsStaffOrSuperuser())
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("jane@example.com", 42, false, false)
	assert.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)

	// a token signed with a different key must not validate
	Initialize(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestGenerateToken_RequiresInitialization(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	cfgBackup := cfg
	cfg = nil
	defer func() { cfg = cfgBackup }()

	_, err := GenerateToken("jane@example.com", 1, false, false)
	assert.Error(t, err)
	_, err = ValidateToken("whatever")
	assert.Error(t, err)
}

func TestClaims_SuperuserCountsAsStaff(t *testing.T) {
	claims := &UserClaims{IsSuperuser: true}
	assert.True(t, claims.IsStaffOrSuperuser())
	claims = &UserClaims{}
	assert.False(t, claims.IsStaffOrSuperuser())
}
