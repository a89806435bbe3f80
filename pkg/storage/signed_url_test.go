package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("portal-secret", time.Hour)

	token, expiresAt, err := signer.Generate("rcpt-1", "rcpt-1/receipt.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	id, path, _, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "rcpt-1", id)
	assert.Equal(t, "rcpt-1/receipt.pdf", path)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("portal-secret", time.Hour)

	token, _, err := signer.Generate("rcpt-1", "rcpt-1/receipt.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("different-secret", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("portal-secret", -time.Minute)

	token, _, err := signer.Generate("rcpt-1", "rcpt-1/receipt.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token, false)
	assert.Error(t, err)

	_, _, _, err = signer.Parse(token, true)
	assert.NoError(t, err)
}
