package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerification_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	tok, err := m.GenerateVerification(42, "bob@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, tok)

	claims, err := m.VerifyVerification(tok)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
}

func TestVerification_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	tok, err := m.GenerateVerification(42, "bob@example.com")
	assert.NoError(t, err)

	_, err = m.VerifyVerification(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerification_WrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	tok, err := m.GenerateVerification(42, "bob@example.com")
	assert.NoError(t, err)

	_, err = other.VerifyVerification(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerification_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.VerifyVerification("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
