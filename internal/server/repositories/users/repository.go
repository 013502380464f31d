// Package users declares the server-side repository contract for account
// records in the credential store.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authcore/internal/server/models"
)

// Repository defines operations for creating, reading and mutating users.
type Repository interface {
	// Create writes a new user with a conditional guard on user_id, so an
	// id collision fails instead of overwriting. Implementations return an
	// internal-invariant error on collision.
	Create(ctx context.Context, user *models.User) error

	// GetByID reads a user by primary key with a strongly consistent read.
	// Returns a not-found error when the user is absent.
	GetByID(ctx context.Context, userID string) (*models.User, error)

	// GetByUsername looks a user up via the username secondary index.
	// The index is eventually consistent; callers must treat the result as
	// a best-effort check. Returns a not-found error when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateLastLogin stamps a successful login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// UpdateUsername sets a new username and the change timestamp.
	UpdateUsername(ctx context.Context, userID, username string, at time.Time) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
