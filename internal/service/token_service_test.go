package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, 24*time.Hour, "test-issuer")
	userID := uuid.New()

	tokenStr, expiresAt, err := svc.Generate(userID, "ada")
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada", claims.Username)
}

func TestJWTTokenService_Rejects(t *testing.T) {
	valid := NewJWTTokenService(testJWTSecret, 24*time.Hour, "issuer")
	expired := NewJWTTokenService(testJWTSecret, -1*time.Hour, "issuer")
	otherSecret := NewJWTTokenService("secret-2", 24*time.Hour, "issuer")
	otherIssuer := NewJWTTokenService(testJWTSecret, 24*time.Hour, "someone-else")

	expiredTok, _, err := expired.Generate(uuid.New(), "u")
	require.NoError(t, err)
	foreignTok, _, err := otherSecret.Generate(uuid.New(), "u")
	require.NoError(t, err)
	issuerTok, _, err := otherIssuer.Generate(uuid.New(), "u")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredTok},
		{"different secret", foreignTok},
		{"different issuer", issuerTok},
		{"malformed", "not.a.valid.jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valid.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, time.Hour, "issuer")

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsBadSubject(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, time.Hour, "issuer")

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Issuer:    "issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.Error(t, err)
}
