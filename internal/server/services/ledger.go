// Package services contains server-side business logic: the refresh-token
// ledger and the authentication engine composing it with the token codec.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/server/auth"
	"github.com/dmitrijs2005/authcore/internal/server/models"
	"github.com/dmitrijs2005/authcore/internal/server/repositories/refreshtokens"
)

// Ledger is the durable record-keeper for refresh-token validity. The signed
// token carries its own expiry, but the ledger record is the source of truth:
// a correctly signed token whose record is absent or revoked is rejected.
type Ledger struct {
	tokens refreshtokens.Repository
	codec  *auth.Codec
	logger logging.Logger
}

func NewLedger(tokens refreshtokens.Repository, codec *auth.Codec, logger logging.Logger) *Ledger {
	return &Ledger{tokens: tokens, codec: codec, logger: logger}
}

// Fingerprint returns the sha256 hex digest of a token string. The ledger
// stores fingerprints instead of raw tokens to limit exposure if the store
// is compromised.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IssueRecord mints a refresh token for the user and writes its shadow record.
// The record id is embedded in the token, the token's fingerprint in the
// record, binding the two together.
func (l *Ledger) IssueRecord(ctx context.Context, userID string) (string, string, error) {
	tokenID := uuid.NewString()

	token, err := l.codec.IssueRefresh(tokenID, userID)
	if err != nil {
		return "", "", fmt.Errorf("issuing refresh token: %w", err)
	}

	now := time.Now()
	record := &models.RefreshToken{
		TokenID:   tokenID,
		UserID:    userID,
		TokenHash: Fingerprint(token),
		ExpiresAt: now.Add(l.codec.RefreshTTL()).Unix(),
		CreatedAt: now,
		IsRevoked: false,
	}

	if err := l.tokens.Create(ctx, record); err != nil {
		return "", "", fmt.Errorf("recording refresh token: %w", err)
	}

	return tokenID, token, nil
}

// ValidateAndConsume checks a presented refresh token against its record and,
// on success, revokes the record and returns the owning user id. The caller
// is expected to issue a replacement record immediately (rotation); if that
// second step fails the session is lost and the user re-authenticates.
//
// The revocation is a conditional write on the record not being revoked yet,
// so two concurrent presentations of the same token cannot both succeed.
func (l *Ledger) ValidateAndConsume(ctx context.Context, token string) (string, error) {
	claims, err := l.codec.VerifyRefresh(token)
	if err != nil {
		return "", err
	}

	record, err := l.tokens.Get(ctx, claims.TokenID)
	if err != nil {
		return "", err
	}

	if record.IsRevoked {
		return "", common.ErrTokenRevoked
	}
	if record.Expired(time.Now()) {
		// TTL deletion lags expiry; treat a lingering record as expired.
		return "", common.ErrTokenExpired
	}
	if record.TokenHash != Fingerprint(token) {
		return "", common.ErrTokenFingerprint
	}

	if err := l.tokens.Consume(ctx, claims.TokenID); err != nil {
		return "", err
	}

	return record.UserID, nil
}

// Revoke marks a single record revoked. Idempotent.
func (l *Ledger) Revoke(ctx context.Context, tokenID string) error {
	return l.tokens.Revoke(ctx, tokenID)
}

// RevokeAllForUser revokes every record for the user. Query-then-revoke is
// not atomic: a refresh landing between the query and a record's revocation
// can still succeed, so logout is best-effort, not a hard security boundary.
func (l *Ledger) RevokeAllForUser(ctx context.Context, userID string) error {
	records, err := l.tokens.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	var errs []error
	for _, record := range records {
		if err := l.tokens.Revoke(ctx, record.TokenID); err != nil {
			l.logger.Error(ctx, "failed to revoke refresh token", "token_id", record.TokenID, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("revoking tokens for user %s: %w", userID, errors.Join(errs...))
	}

	l.logger.Info(ctx, "all refresh tokens revoked", "user_id", userID, "count", len(records))
	return nil
}
