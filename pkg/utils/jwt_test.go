package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, err := CreateToken(userID, "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateToken_Tampered(t *testing.T) {
	token, err := CreateToken(uuid.New(), "user")
	require.NoError(t, err)

	// Flip the last signature character.
	last := token[len(token)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	_, err = ValidateToken(token[:len(token)-1] + string(replacement))
	assert.Error(t, err)
}
