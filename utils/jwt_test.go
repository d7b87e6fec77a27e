package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID().Hex()
	token, err := GenerateJWT(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateJWT("someone")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWT_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := ValidateJWT("not.a.token")
	assert.Error(t, err)
}
