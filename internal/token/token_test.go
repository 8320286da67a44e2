package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/thumbdeck/account-server-go/internal/errors"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	t.Run("round-trips the user id", func(t *testing.T) {
		tokenString, err := svc.Issue("user-123")
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		claims, err := svc.Verify(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("tokens carry distinct ids", func(t *testing.T) {
		a, err := svc.Issue("user-123")
		require.NoError(t, err)
		b, err := svc.Issue("user-123")
		require.NoError(t, err)

		claimsA, err := svc.Verify(a)
		require.NoError(t, err)
		claimsB, err := svc.Verify(b)
		require.NoError(t, err)
		assert.NotEqual(t, claimsA.ID, claimsB.ID)
	})

	t.Run("sets an expiry claim", func(t *testing.T) {
		tokenString, err := svc.Issue("user-123")
		require.NoError(t, err)

		claims, err := svc.Verify(tokenString)
		require.NoError(t, err)
		require.NotNil(t, claims.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})
}

func TestVerifyFailures(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.Verify("not-a-jwt")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.GetCode(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService("other-secret", time.Hour)
		tokenString, err := other.Issue("user-123")
		require.NoError(t, err)

		_, err = svc.Verify(tokenString)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, apperrors.GetCode(err))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewService("test-secret", -time.Minute)
		tokenString, err := expired.Issue("user-123")
		require.NoError(t, err)

		_, err = svc.Verify(tokenString)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, apperrors.GetCode(err))
	})

	t.Run("tampered token", func(t *testing.T) {
		tokenString, err := svc.Issue("user-123")
		require.NoError(t, err)

		tampered := tokenString[:len(tokenString)-2] + "xx"
		_, err = svc.Verify(tampered)
		assert.Error(t, err)
	})
}
