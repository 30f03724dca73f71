package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("s3cret", "nextstepz", time.Hour)
	id := Identity{UserID: "u-1", Email: "lan@example.com", Role: "user"}

	signed, exp, err := tokens.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokens("s3cret", "nextstepz", time.Hour)
	signed, _, err := tokens.Issue(Identity{UserID: "u-1"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", "nextstepz", time.Hour).Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokens("s3cret", "someone-else", time.Hour).Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("expired", func(t *testing.T) {
		later := NewTokens("s3cret", "nextstepz", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(signed)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, CheckPassword(hash, "secret1"))
	assert.ErrorIs(t, CheckPassword(hash, "secret2"), ErrPasswordMismatch)
}
