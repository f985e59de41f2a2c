package tokenmanager

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndodonov/accounts/internal/apperrors"
	"github.com/ndodonov/accounts/internal/models"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testAccount := models.Account{
		ID:       42,
		Email:    "test@example.com",
		Username: "testuser",
	}

	newManager := func(t *testing.T, accessTTL time.Duration, refreshTTL time.Duration) *TokenManager {
		m, err := New(Config{
			SecretKey:  "test-secret-key",
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		})
		require.NoError(t, err, "token manager should be created without errors")
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refreshTTL, "default refresh token TTL")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("new fails without secret", func(t *testing.T) {
		_, err := New(Config{})

		require.Error(t, err)
	})

	t.Run("Issue and Parse roundtrip", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)

		token, err := m.Issue(testAccount, 15*time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, token.Value)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, time.Second)

		claim, err := m.Parse(token.Value)

		require.NoError(t, err)
		assert.Equal(t, testAccount.ID, claim.ID, "embedded identity should survive the roundtrip")
		assert.Equal(t, testAccount.Email, claim.Email)
		assert.Equal(t, testAccount.Username, claim.Username)
	})

	t.Run("GeneratePair", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)

		pair, err := m.GeneratePair(testAccount)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.Access.ExpiresAt, time.Second)
		assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.Refresh.ExpiresAt, time.Second)
		assert.NotEqual(t, pair.Access.Value, pair.Refresh.Value, "jti makes every token unique")
	})

	t.Run("Parse fails on expired token", func(t *testing.T) {
		m := newManager(t, time.Minute, time.Hour)

		token, err := m.Issue(testAccount, -time.Minute)
		require.NoError(t, err)

		_, err = m.Parse(token.Value)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("Parse fails before not-before", func(t *testing.T) {
		m := newManager(t, time.Minute, time.Hour)

		// Craft a token whose nbf is in the future
		now := time.Now()
		notYetValid := jwt.NewWithClaims(m.alg, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
			},
			Account: &AccountClaim{ID: 42},
		})
		signed, err := notYetValid.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = m.Parse(signed)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("Parse fails on wrong key", func(t *testing.T) {
		m := newManager(t, time.Minute, time.Hour)
		other, err := New(Config{SecretKey: "other-secret-key"})
		require.NoError(t, err)

		token, err := other.Issue(testAccount, time.Minute)
		require.NoError(t, err)

		_, err = m.Parse(token.Value)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("Parse fails on garbage", func(t *testing.T) {
		m := newManager(t, time.Minute, time.Hour)

		_, err := m.Parse("not-a-jwt-at-all")

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("Parse fails when account claim missing", func(t *testing.T) {
		m := newManager(t, time.Minute, time.Hour)

		// Valid signature and time bounds, but no embedded identity
		now := time.Now()
		bare := jwt.NewWithClaims(m.alg, jwt.RegisteredClaims{
			Subject:   "42",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		})
		signed, err := bare.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = m.Parse(signed)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrTokenMissingAccount)
	})
}
