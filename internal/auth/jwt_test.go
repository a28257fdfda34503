package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/hward/huddle/internal/domain"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestVerify_ValidToken(t *testing.T) {
	req := require.New(t)
	v := NewVerifier(secret)

	tok := sign(t, jwt.MapClaims{
		"sub":  "user-1",
		"name": "Ada",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	ident, err := v.Verify(tok)
	req.NoError(err)
	req.Equal(domain.UserID("user-1"), ident.UserID)
	req.Equal("Ada", ident.UserName)
	req.Equal(domain.RoleAdmin, ident.Role)
}

func TestVerify_DefaultsToMemberRole(t *testing.T) {
	req := require.New(t)
	v := NewVerifier(secret)

	tok := sign(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
	ident, err := v.Verify(tok)
	req.NoError(err)
	req.Equal(domain.RoleMember, ident.Role)
	req.Equal("user-1", ident.UserName) // falls back to sub
}

func TestVerify_Rejections(t *testing.T) {
	req := require.New(t)
	v := NewVerifier(secret)

	_, err := v.Verify("")
	req.ErrorIs(err, domain.ErrUnauthorized)

	_, err = v.Verify("not-a-token")
	req.ErrorIs(err, domain.ErrUnauthorized)

	expired := sign(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()})
	_, err = v.Verify(expired)
	req.ErrorIs(err, domain.ErrUnauthorized)

	noSub := sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	_, err = v.Verify(noSub)
	req.ErrorIs(err, domain.ErrUnauthorized)

	other, err2 := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).
		SignedString([]byte("other-secret"))
	req.NoError(err2)
	_, err = v.Verify(other)
	req.ErrorIs(err, domain.ErrUnauthorized)
}
