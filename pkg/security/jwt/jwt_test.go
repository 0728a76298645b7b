package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMintVerifyRoundtrip(t *testing.T) {
	issuer := NewIssuer("secret", "sitebase-auth", time.Hour)

	token, err := issuer.Mint("user-42")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewIssuer("secret", "sitebase-auth", -time.Minute)

	token, err := issuer.Mint("user-42")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	minter := NewIssuer("secret-a", "sitebase-auth", time.Hour)
	checker := NewIssuer("secret-b", "sitebase-auth", time.Hour)

	token, err := minter.Mint("user-42")
	require.NoError(t, err)

	_, err = checker.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongIssuer(t *testing.T) {
	minter := NewIssuer("secret", "other-service", time.Hour)
	checker := NewIssuer("secret", "sitebase-auth", time.Hour)

	token, err := minter.Mint("user-42")
	require.NoError(t, err)

	_, err = checker.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewIssuer("secret", "sitebase-auth", time.Hour)

	for _, tokenStr := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(tokenStr)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}
