// Package auth verifies externally issued bearer credentials. Token
// issuance lives elsewhere; a coordinator only ever checks them.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hward/huddle/internal/domain"
)

// Identity is what a verified credential asserts about a connection.
type Identity struct {
	UserID   domain.UserID
	UserName string
	Role     domain.Role
}

// Verifier checks HS256 bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates the token and extracts the identity claims.
// Any failure (missing, malformed, expired, bad signature) maps to
// ErrUnauthorized so the handshake has a single rejection path.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, domain.ErrUnauthorized
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, domain.ErrUnauthorized
	}
	name, _ := claims["name"].(string)
	if name == "" {
		name = sub
	}

	role := domain.RoleMember
	if r, _ := claims["role"].(string); r == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}

	return Identity{UserID: domain.UserID(sub), UserName: name, Role: role}, nil
}
