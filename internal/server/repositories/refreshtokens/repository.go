// Package refreshtokens declares the server-side repository contract for
// refresh-token records in the credential store.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/authcore/internal/server/models"
)

// Repository defines operations for persisting and revoking refresh-token
// records. Records are write-once except for the revocation flag.
type Repository interface {
	// Create writes a new record with a conditional guard on token_id.
	// Implementations return an internal-invariant error on collision.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Get reads a record by primary key with a strongly consistent read.
	// Returns a not-found error when absent (expired records disappear via
	// the store's TTL).
	Get(ctx context.Context, tokenID string) (*models.RefreshToken, error)

	// Consume flips the record to revoked, conditional on it not being
	// revoked yet. The loser of a concurrent double-spend gets the
	// revoked-token error; this is what makes rotation single-use.
	Consume(ctx context.Context, tokenID string) error

	// Revoke flips the record to revoked unconditionally. Idempotent;
	// revoking an absent record is not an error.
	Revoke(ctx context.Context, tokenID string) error

	// ListByUser returns all records for a user via the user-id secondary
	// index, revoked ones included.
	ListByUser(ctx context.Context, userID string) ([]*models.RefreshToken, error)
}
