package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("emp-1", "a@example.com", employee.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	parsed, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	claims, err := parsed.AsMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims["employee_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, _, err := svc.GenerateAccessToken("emp-1", "a@example.com", employee.RoleEmployee)
	require.NoError(t, err)
	assert.False(t, svc.IsTokenRevoked(token))

	require.NoError(t, svc.RevokeToken(token))
	assert.True(t, svc.IsTokenRevoked(token))

	assert.Error(t, svc.RevokeToken("not-a-token"))
}

func TestRevokedTokensArePruned(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	old, _, err := svc.GenerateAccessToken("emp-1", "a@example.com", employee.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeToken(old))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	fresh, _, err := svc.GenerateAccessToken("emp-2", "b@example.com", employee.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeToken(fresh))

	assert.False(t, svc.IsTokenRevoked(old))
	assert.True(t, svc.IsTokenRevoked(fresh))
}

func TestPruneRevoked(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)

	token, _, err := svc.GenerateAccessToken("emp-1", "a@example.com", employee.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeToken(token))

	assert.Equal(t, 0, svc.PruneRevoked())
	assert.True(t, svc.IsTokenRevoked(token))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 1, svc.PruneRevoked())
	assert.False(t, svc.IsTokenRevoked(token))
}
