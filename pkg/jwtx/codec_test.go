package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-codec-tests"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, "HS256")
	require.NoError(t, err)
	return c
}

func TestNewCodec(t *testing.T) {
	t.Run("defaults to HS256", func(t *testing.T) {
		c, err := NewCodec("secret", "")
		require.NoError(t, err)
		require.Equal(t, "HS256", c.method.Alg())
	})

	t.Run("accepts lowercase algorithm", func(t *testing.T) {
		_, err := NewCodec("secret", "hs512")
		require.NoError(t, err)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewCodec("", "HS256")
		require.Error(t, err)
	})

	t.Run("rejects asymmetric algorithms", func(t *testing.T) {
		_, err := NewCodec("secret", "RS256")
		require.Error(t, err)
	})
}

func TestCodec_AccessRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	token, err := c.Encode(NewAccessClaims("alice", true, time.Hour, now))
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(token, ".")))

	claims, err := c.DecodeAccess(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.True(t, claims.IsAdmin)
}

func TestCodec_RefreshRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	token, err := c.Encode(NewRefreshClaims("bob", "fingerprint-value", time.Hour, now))
	require.NoError(t, err)

	claims, err := c.DecodeRefresh(token)
	require.NoError(t, err)
	require.Equal(t, "bob", claims.Subject)
	require.Equal(t, "fingerprint-value", claims.AccessFingerprint)
}

func TestCodec_ExpiredToken(t *testing.T) {
	c := newTestCodec(t)
	past := time.Now().UTC().Add(-2 * time.Hour)

	token, err := c.Encode(NewAccessClaims("alice", false, time.Hour, past))
	require.NoError(t, err)

	_, err = c.DecodeAccess(token)
	require.ErrorIs(t, err, ErrExpired)

	// The lenient decode exists for the refresh path: signature intact,
	// expiry ignored.
	claims, err := c.DecodeAccessAllowExpired(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
}

func TestCodec_ExpiredRefreshIsNotTolerated(t *testing.T) {
	c := newTestCodec(t)
	past := time.Now().UTC().Add(-2 * time.Hour)

	token, err := c.Encode(NewRefreshClaims("alice", "fp", time.Hour, past))
	require.NoError(t, err)

	_, err = c.DecodeRefresh(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestCodec_TamperedToken(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	token, err := c.Encode(NewAccessClaims("alice", false, time.Hour, now))
	require.NoError(t, err)

	t.Run("flipped signature byte", func(t *testing.T) {
		tampered := token[:len(token)-2] + "xx"
		_, err := c.DecodeAccess(tampered)
		require.ErrorIs(t, err, ErrInvalidSig)

		// Not even the expiry-tolerant decode accepts a bad signature.
		_, err = c.DecodeAccessAllowExpired(tampered)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewCodec("a-completely-different-secret", "HS256")
		require.NoError(t, err)
		_, err = other.DecodeAccess(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := c.DecodeAccess("not.a.token")
		require.ErrorIs(t, err, ErrMalformed)

		_, err = c.DecodeAccess("")
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestCodec_ClaimShape(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	access, err := c.Encode(NewAccessClaims("alice", false, time.Hour, now))
	require.NoError(t, err)
	refresh, err := c.Encode(NewRefreshClaims("alice", "fp", time.Hour, now))
	require.NoError(t, err)

	t.Run("refresh token rejected as access credential", func(t *testing.T) {
		_, err := c.DecodeAccess(refresh)
		require.ErrorIs(t, err, ErrInvalidClaim)
	})

	t.Run("access token rejected as refresh credential", func(t *testing.T) {
		_, err := c.DecodeRefresh(access)
		require.ErrorIs(t, err, ErrInvalidClaim)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		token, err := c.Encode(NewAccessClaims("", false, time.Hour, now))
		require.NoError(t, err)
		_, err = c.DecodeAccess(token)
		require.ErrorIs(t, err, ErrInvalidClaim)
	})
}
