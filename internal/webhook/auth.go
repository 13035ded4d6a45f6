// ABOUTME: JWT verification for inbound webhook requests
// ABOUTME: Uses HS256 signing with configurable secret; disabled when no secret is set

package webhook

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Verifier validates bearer tokens on inbound channel requests. A nil
// Verifier means verification is disabled (local testing against an
// emulator).
type Verifier struct {
	secret []byte
	appID  string
}

// NewVerifier creates a verifier for the given shared secret. When appID is
// non-empty, the token's aud claim must match it.
func NewVerifier(secret []byte, appID string) *Verifier {
	return &Verifier{secret: secret, appID: appID}
}

// Verify validates the token signature, expiry, and audience.
func (v *Verifier) Verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}

	if v.appID != "" {
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ErrInvalidToken
		}
		aud, _ := claims["aud"].(string)
		if aud != v.appID {
			return fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
		}
	}

	return nil
}

// Generate creates a signed token for the configured audience. Used by
// tests and local tooling.
func (v *Verifier) Generate(expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"aud": v.appID,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
