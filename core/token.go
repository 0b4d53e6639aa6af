package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the minimum length of a token signing secret.
const MinSecretLen = 32

var ErrWeakSecret = fmt.Errorf("token secret must be at least %d bytes", MinSecretLen)

// TokenSigner issues and checks HS256 bearer tokens. They are an alternative to the session cookie,
// e.g. for scripts which upload articles.
type TokenSigner struct {
	Secret []byte
	Issuer string
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// Sign returns a token for the given username, valid for ttl.
func (s *TokenSigner) Sign(username string, ttl time.Duration) (string, error) {
	if len(s.Secret) < MinSecretLen {
		return "", ErrWeakSecret
	}
	var now = time.Now()
	var claims = &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Verify returns the username from a valid token. The signing method is pinned to HS256.
func (s *TokenSigner) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
