package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainVerifier(t *testing.T) {
	v := PlainVerifier{}
	sealed, err := v.Seal("secret1")
	require.NoError(t, err)
	assert.Equal(t, "secret1", sealed)
	assert.True(t, v.Verify(sealed, "secret1"))
	assert.False(t, v.Verify(sealed, "Secret1"))
	assert.False(t, v.Verify(sealed, "secret1 "))
}

func TestBcryptVerifier(t *testing.T) {
	v := BcryptVerifier{Cost: 4}
	sealed, err := v.Seal("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", sealed)
	assert.True(t, v.Verify(sealed, "secret1"))
	assert.False(t, v.Verify(sealed, "secret2"))
	assert.False(t, v.Verify("secret1", "secret1"), "plaintext records do not verify as bcrypt")
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier("")
	require.NoError(t, err)
	assert.IsType(t, PlainVerifier{}, v)

	v, err = NewVerifier(VerifierBcrypt)
	require.NoError(t, err)
	assert.IsType(t, BcryptVerifier{}, v)

	_, err = NewVerifier("md5")
	assert.ErrorContains(t, err, `unknown password hashing "md5"`)
}
