// Package auth implements the stateless token codec: signing and verification
// of self-contained, time-bounded access and refresh tokens. The codec never
// touches the store; refresh-token validity against the server-side ledger is
// the services layer's concern.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates access tokens from refresh tokens via the signed
// "type" claim. Verification fails with common.ErrWrongTokenType when a token
// of one kind is presented where the other is expected.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	TokenType TokenKind `json:"type"`
}

// RefreshClaims is the payload of a refresh token. TokenID links the token to
// its server-side ledger record.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	TokenType TokenKind `json:"type"`
}

// Codec signs and verifies tokens with a process-wide HS256 secret.
// The secret is read-only after construction; Codec is safe for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// RefreshTTL reports the configured refresh token lifetime, which the ledger
// also uses for the record's storage-level expiry.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccess mints a signed access token carrying the user's id and username.
func (c *Codec) IssueAccess(userID, username string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
		UserID:    userID,
		Username:  username,
		TokenType: KindAccess,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return token, nil
}

// IssueRefresh mints a signed refresh token embedding the ledger record id.
func (c *Codec) IssueRefresh(tokenID, userID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
		TokenID:   tokenID,
		UserID:    userID,
		TokenType: KindRefresh,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing refresh token: %w", err)
	}
	return token, nil
}

// VerifyAccess checks the signature and expiry of an access token and that its
// type claim is "access".
func (c *Codec) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != KindAccess {
		return nil, common.ErrWrongTokenType
	}
	return claims, nil
}

// VerifyRefresh checks the signature and expiry of a refresh token and that
// its type claim is "refresh".
func (c *Codec) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != KindRefresh {
		return nil, common.ErrWrongTokenType
	}
	return claims, nil
}

func (c *Codec) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrTokenMalformed
	}
	if !token.Valid {
		return common.ErrTokenMalformed
	}
	return nil
}
