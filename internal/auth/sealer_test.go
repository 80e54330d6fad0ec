package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	sealer, err := NewSealer("process-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-live-0123456789")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk-live")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-0123456789", opened)
}

func TestSealer_FreshNoncePerSeal(t *testing.T) {
	sealer, err := NewSealer("process-secret")
	require.NoError(t, err)

	a, err := sealer.Seal("same")
	require.NoError(t, err)
	b, err := sealer.Seal("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSealer_RejectsOtherSecretAndGarbage(t *testing.T) {
	sealer, err := NewSealer("process-secret")
	require.NoError(t, err)
	other, err := NewSealer("another-secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-live-0123456789")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealable)
	_, err = sealer.Open("not base64 !!")
	assert.ErrorIs(t, err, ErrUnsealable)
	_, err = sealer.Open("")
	assert.ErrorIs(t, err, ErrUnsealable)
}

func TestNewSealer_EmptySecret(t *testing.T) {
	_, err := NewSealer("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "sk-l...6789", MaskKey("sk-live-0123456789"))
	assert.Equal(t, "****", MaskKey("short"))
}
