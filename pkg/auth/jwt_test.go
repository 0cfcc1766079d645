package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/config"
	"github.com/shashiranjanraj/kashvi-crm/pkg/auth"
)

func TestIssueAndValidate(t *testing.T) {
	config.Set("JWT_SECRET", "test-secret")

	tok, err := auth.IssueToken("reminder-worker", "graphql", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "reminder-worker", claims.Subject)
	assert.Equal(t, "graphql", claims.Scope)

	ctx := auth.WithClaims(context.Background(), claims)
	got, ok := auth.FromCtx(ctx)
	require.True(t, ok)
	assert.Same(t, claims, got)
}

func TestValidate_Rejects(t *testing.T) {
	config.Set("JWT_SECRET", "test-secret")

	expired, err := auth.IssueToken("c", "", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	good, err := auth.IssueToken("c", "", time.Hour)
	require.NoError(t, err)
	config.Set("JWT_SECRET", "rotated")
	_, err = auth.ValidateToken(good)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.IssueToken("", "", time.Hour)
	assert.Error(t, err)
}
