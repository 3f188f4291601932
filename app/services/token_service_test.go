// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:        "valid symmetric key configuration",
			useRSAKeys:  false,
			secretKey:   "test-secret-key-for-jwt-signing-32-chars",
			expectError: false,
		},
		{
			name:        "missing secret key",
			useRSAKeys:  false,
			secretKey:   "",
			expectError: true,
		},
		{
			name:        "missing RSA keys",
			useRSAKeys:  true,
			secretKey:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(
				15*time.Minute,
				7*24*time.Hour,
				"test-issuer",
				"test-audience",
				tt.useRSAKeys,
				"",
				"",
				tt.secretKey,
			)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestGenerateTokens(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	tests := []struct {
		name      string
		accountID uint
		isAdmin   bool
	}{
		{name: "regular account", accountID: 123, isAdmin: false},
		{name: "admin account", accountID: 7, isAdmin: true},
		{name: "zero account ID", accountID: 0, isAdmin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessToken, refreshToken, err := service.GenerateTokens(tt.accountID, tt.isAdmin)
			require.NoError(t, err)
			assert.NotEmpty(t, accessToken)
			assert.NotEmpty(t, refreshToken)
			assert.NotEqual(t, accessToken, refreshToken)
		})
	}
}

func TestValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42, true)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.AccountID)
		assert.True(t, claims.IsAdmin)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("valid refresh token", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.AccountID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("admin flag preserved as false", func(t *testing.T) {
		access, _, err := service.GenerateTokens(9, false)
		require.NoError(t, err)
		claims, err := service.ValidateToken(access)
		require.NoError(t, err)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("garbage token", func(t *testing.T) {
		claims, err := service.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Nil(t, claims)
	})

	t.Run("empty token", func(t *testing.T) {
		claims, err := service.ValidateToken("")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("token signed with different key", func(t *testing.T) {
		other, err := NewTokenService(
			15*time.Minute, 7*24*time.Hour,
			"test-issuer", "test-audience",
			false, "", "",
			"another-secret-key-for-jwt-signing-32",
		)
		require.NoError(t, err)

		foreign, _, err := other.GenerateTokens(42, false)
		require.NoError(t, err)

		claims, err := service.ValidateToken(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Nil(t, claims)
	})
}

func TestTokenExpiration(t *testing.T) {
	service, err := NewTokenService(
		-1*time.Minute, // already expired
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, "", "",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)

	accessToken, _, err := service.GenerateTokens(42, false)
	require.NoError(t, err)

	claims, err := service.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestRefreshToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42, true)
	require.NoError(t, err)

	t.Run("refresh with refresh token", func(t *testing.T) {
		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)

		claims, err := service.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.AccountID)
		assert.True(t, claims.IsAdmin)
	})

	t.Run("refresh with access token fails", func(t *testing.T) {
		_, _, err := service.RefreshToken(accessToken)
		assert.Error(t, err)
	})

	t.Run("refresh with garbage fails", func(t *testing.T) {
		_, _, err := service.RefreshToken("garbage")
		assert.Error(t, err)
	})
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(42, false)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(accessToken))

	t.Run("revoked token no longer validates", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
		assert.Nil(t, claims)
	})

	t.Run("revocation is idempotent", func(t *testing.T) {
		assert.NoError(t, service.RevokeToken(accessToken))
	})

	t.Run("other tokens unaffected", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.AccountID)
	})

	t.Run("IsTokenRevoked reports state", func(t *testing.T) {
		assert.True(t, service.IsTokenRevoked(accessToken))
		assert.False(t, service.IsTokenRevoked(refreshToken))
		assert.True(t, service.IsTokenRevoked("garbage"))
	})
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	const goroutines = 20

	var wg sync.WaitGroup
	tokens := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			access, _, err := service.GenerateTokens(uint(idx+1), false)
			assert.NoError(t, err)
			tokens[idx] = access
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, goroutines)
	for i, token := range tokens {
		require.NotEmpty(t, token)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(i+1), claims.AccountID)
	}
}
