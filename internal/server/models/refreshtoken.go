package models

import "time"

// RefreshToken is the server-side shadow record of an issued refresh token.
// The record, not the signed token string, is the source of truth for
// validity: a correctly signed token whose record is absent or revoked must
// be rejected.
//
// TokenHash holds a sha256 fingerprint of the issued token string instead of
// the token itself. ExpiresAt is unix seconds because it doubles as the
// table's TTL attribute; the store deletes the item some time after expiry.
// Records are mutated exactly once, by flipping IsRevoked — rotation creates
// a new record rather than updating the old one.
type RefreshToken struct {
	TokenID   string    `dynamodbav:"token_id"`
	UserID    string    `dynamodbav:"user_id"`
	TokenHash string    `dynamodbav:"token_hash"`
	ExpiresAt int64     `dynamodbav:"expires_at"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	IsRevoked bool      `dynamodbav:"is_revoked"`
}

// Expired reports whether the record's storage-level expiry has passed.
// Checked explicitly because TTL deletion in the store lags expiry.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.Unix() >= t.ExpiresAt
}
