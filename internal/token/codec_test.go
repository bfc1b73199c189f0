package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintDecodeRoundTrip(t *testing.T) {
	codec := NewCodec("secret-value")

	raw, err := codec.Mint("a@b.com", 2*time.Hour)
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	minted, err := NewCodec("secret-one").Mint("a@b.com", time.Hour)
	require.NoError(t, err)

	_, err = NewCodec("secret-two").Decode(minted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecodeRejectsMalformedToken(t *testing.T) {
	_, err := NewCodec("secret").Decode("not-a-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecodeRejectsUnexpectedAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "a@b.com"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewCodec("secret").Decode(unsigned)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecodeDoesNotValidateExpiry(t *testing.T) {
	codec := NewCodec("secret")

	raw, err := codec.Mint("a@b.com", -time.Hour)
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.Time.Before(time.Now()))
}

func TestDecodeTokenWithoutExpiry(t *testing.T) {
	// A token missing exp still decodes; rejecting it is the middleware's job.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "a@b.com"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	claims, err := NewCodec("secret").Decode(raw)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}
