package auth

import (
	"testing"
	"time"

	"fleet-backend/internal/config"
	"fleet-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "fleet-test"
	return cfg
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager(testConfig("secret"))
	user := &models.User{ID: "u1", Email: "m@fleet.com", Role: models.RoleManager, IsActive: true}

	token, err := m.GenerateToken(user)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "fleet-test", claims.Issuer)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	m := NewJWTManager(testConfig("secret"))
	user := &models.User{ID: "u1"}

	a, err := m.GenerateToken(user)
	require.NoError(t, err)
	b, err := m.GenerateToken(user)
	require.NoError(t, err)

	ca, err := m.ValidateToken(a)
	require.NoError(t, err)
	cb, err := m.ValidateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testConfig("one")).GenerateToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewJWTManager(testConfig("two")).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	m := NewJWTManager(testConfig("secret"))
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
