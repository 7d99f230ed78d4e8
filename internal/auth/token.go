// Package auth issues and verifies admin bearer tokens and checks admin
// passwords against the admin directory.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "synopsis"

// RoleAdmin is the only role allowed on the admin API.
const RoleAdmin = "admin"

// Identity is the authenticated principal of a request.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Gateway signs and verifies HS256 tokens with a shared secret.
type Gateway struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewGateway returns a Gateway whose tokens are valid for ttl.
func NewGateway(secret []byte, ttl time.Duration) *Gateway {
	return &Gateway{secret: secret, ttl: ttl, now: time.Now}
}

// IssueToken returns a signed token for id and its expiry time.
func (g *Gateway) IssueToken(id Identity) (string, time.Time, error) {
	now := g.now()
	expires := now.Add(g.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks the signature, issuer and expiry of tokenString and returns
// the identity it carries.
func (g *Gateway) Verify(tokenString string) (*Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}
	return &Identity{Username: c.Subject, Role: c.Role}, nil
}
