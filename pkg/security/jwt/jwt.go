package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie carrying the token between client and
// server.
const CookieName = "auth_token"

// ErrInvalidToken is the single failure outcome of Verify. Signature and
// expiry failures are deliberately indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Issuer mints and validates signed session tokens (HS256). Tokens are
// stateless: expiry is the only way one stops being honored short of
// secret rotation.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL returns the lifetime stamped into minted tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Mint produces a signed token whose subject is the given user identifier,
// expiring ttl from now.
func (i *Issuer) Mint(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify checks signature, expiry and issuer, returning the subject user
// identifier. Every failure collapses to ErrInvalidToken.
func (i *Issuer) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
