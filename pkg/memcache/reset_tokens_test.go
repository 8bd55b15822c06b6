package mem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResetTokens_SetPeekConsume(t *testing.T) {
	store := NewResetTokens()
	store.Set("123456", "user@example.com", time.Minute)

	email, ok := store.Peek("123456")
	assert.True(t, ok)
	assert.Equal(t, "user@example.com", email)

	// Peek does not consume.
	_, ok = store.Peek("123456")
	assert.True(t, ok)

	assert.Equal(t, "user@example.com", store.Consume("123456"))

	// Single use.
	assert.Equal(t, "", store.Consume("123456"))
	_, ok = store.Peek("123456")
	assert.False(t, ok)
}

func TestResetTokens_Expiry(t *testing.T) {
	store := NewResetTokens()
	store.Set("654321", "user@example.com", -time.Second)

	_, ok := store.Peek("654321")
	assert.False(t, ok)
	assert.Equal(t, "", store.Consume("654321"))
}

func TestResetTokens_Missing(t *testing.T) {
	store := NewResetTokens()
	assert.Equal(t, "", store.Consume("nope"))
}
