package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestInspect(t *testing.T) {
	tok := signToken(t, &Claims{
		UserID:   7,
		Username: "zhangsan",
		Role:     "KitchenStaff",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.Equal(t, "KitchenStaff", claims.Role)
}

func TestInspectMalformed(t *testing.T) {
	_, err := Inspect("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestExpired(t *testing.T) {
	live := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	dead := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	noExp := signToken(t, &Claims{Username: "zhangsan"})

	assert.False(t, Expired(live))
	assert.True(t, Expired(dead))
	// 没有过期声明交给后端401兜底
	assert.False(t, Expired(noExp))
	assert.True(t, Expired("garbage"))
}

func TestRemainingTTL(t *testing.T) {
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	ttl := RemainingTTL(tok)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	assert.Zero(t, RemainingTTL("garbage"))

	dead := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	assert.Zero(t, RemainingTTL(dead))
}
