package service

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	membershipTokenIssuer  = "localtrip/membership"
	membershipTokenPurpose = "localtrip membership token v1"
)

// TokenCodec issues and verifies membership tokens: `payload.mac` strings binding a
// billing subscriber to an expiry. Tokens are self-verifying; rotating the secret
// invalidates every outstanding token.
type TokenCodec struct {
	key []byte
	now func() time.Time
}

// NewTokenCodec accepts an empty secret so that verification can still run (and
// reject everything); Issue reports the misconfiguration.
func NewTokenCodec(secret string) *TokenCodec {
	c := &TokenCodec{now: time.Now}
	if strings.TrimSpace(secret) != "" {
		c.key = deriveKey(secret, membershipTokenPurpose)
	}
	return c
}

func (c *TokenCodec) Issue(subscriberID string, ttl time.Duration) (string, time.Time, error) {
	if len(c.key) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: MEMBERSHIP_TOKEN_SECRET is required", ErrMisconfigured)
	}
	if strings.TrimSpace(subscriberID) == "" {
		return "", time.Time{}, ErrInvalidInput
	}

	now := c.now()
	// exp is carried in whole seconds; round up so the token never expires early.
	expiresAt := now.Add(ttl)
	if truncated := expiresAt.Truncate(time.Second); !truncated.Equal(expiresAt) {
		expiresAt = truncated.Add(time.Second)
	}
	claims := jwt.RegisteredClaims{
		Issuer:    membershipTokenIssuer,
		Subject:   subscriberID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify returns the subscriber bound to token. Malformed input, a signature
// mismatch or a past expiry all yield ok=false.
func (c *TokenCodec) Verify(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if len(c.key) == 0 || token == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(membershipTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// deriveKey separates keys per purpose so the session and membership signers never
// share key material.
func deriveKey(secret, purpose string) []byte {
	key := make([]byte, sha256.Size)
	// 32 bytes is far below the HKDF output limit, so the read cannot fail.
	_, _ = io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose)), key)
	return key
}
