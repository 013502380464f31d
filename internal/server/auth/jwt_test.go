package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
)

func newTestCodec() *Codec {
	return NewCodec([]byte("super-secret"), 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAndVerifyAccess_Success(t *testing.T) {
	t.Parallel()

	c := newTestCodec()

	tok, err := c.IssueAccess("user-123", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	claims, err := c.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("user id mismatch: got %q want %q", claims.UserID, "user-123")
	}
	if claims.Username != "alice" {
		t.Fatalf("username mismatch: got %q want %q", claims.Username, "alice")
	}
	if claims.TokenType != KindAccess {
		t.Fatalf("token type mismatch: got %q", claims.TokenType)
	}
}

func TestIssueAndVerifyRefresh_Success(t *testing.T) {
	t.Parallel()

	c := newTestCodec()

	tok, err := c.IssueRefresh("tok-1", "user-123")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	claims, err := c.VerifyRefresh(tok)
	if err != nil {
		t.Fatalf("VerifyRefresh error: %v", err)
	}
	if claims.TokenID != "tok-1" {
		t.Fatalf("token id mismatch: got %q want %q", claims.TokenID, "tok-1")
	}
	if claims.UserID != "user-123" {
		t.Fatalf("user id mismatch: got %q want %q", claims.UserID, "user-123")
	}
}

func TestVerifyAccess_Expired(t *testing.T) {
	t.Parallel()

	c := NewCodec([]byte("secret"), -1*time.Second, time.Hour)

	tok, err := c.IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	_, err = c.VerifyAccess(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongTokenType(t *testing.T) {
	t.Parallel()

	c := newTestCodec()

	access, err := c.IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	refresh, err := c.IssueRefresh("tok-1", "u1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := c.VerifyRefresh(access); !errors.Is(err, common.ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for access token, got %v", err)
	}
	if _, err := c.VerifyAccess(refresh); !errors.Is(err, common.ErrWrongTokenType) {
		t.Fatalf("expected ErrWrongTokenType for refresh token, got %v", err)
	}
}

func TestVerifyAccess_Malformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec()

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := c.VerifyAccess(tok); !errors.Is(err, common.ErrTokenMalformed) {
			t.Fatalf("expected ErrTokenMalformed for %q, got %v", tok, err)
		}
	}
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec([]byte("right-secret"), time.Hour, time.Hour).IssueAccess("u1", "alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	c := NewCodec([]byte("wrong-secret"), time.Hour, time.Hour)
	if _, err := c.VerifyAccess(tok); !errors.Is(err, common.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}
