// Package common defines the sentinel errors shared across AuthCore layers.
// Errors form a two-level taxonomy: category sentinels (validation, conflict,
// authentication, not-found, store, internal) and leaf sentinels that wrap
// their category, so callers can match either level with errors.Is.
package common

import (
	"errors"
	"fmt"
)

// Category sentinels. The transport boundary maps these onto status codes.
var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrAuthentication   = errors.New("authentication failed")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)

// Leaf sentinels.
var (
	// Validation.
	ErrUsernameLength  = fmt.Errorf("%w: username must be 3-20 characters", ErrValidation)
	ErrUsernameCharset = fmt.Errorf("%w: username may contain only letters, digits and underscore", ErrValidation)
	ErrPasswordLength  = fmt.Errorf("%w: password must be at least 4 characters", ErrValidation)

	// Conflict.
	ErrUsernameTaken = fmt.Errorf("%w: username already in use", ErrConflict)

	// Authentication.
	ErrAccountInactive    = fmt.Errorf("%w: account is inactive", ErrAuthentication)
	ErrCredentialMismatch = fmt.Errorf("%w: password does not match", ErrAuthentication)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrAuthentication)
	ErrTokenMalformed     = fmt.Errorf("%w: malformed token", ErrAuthentication)
	ErrWrongTokenType     = fmt.Errorf("%w: wrong token type", ErrAuthentication)
	ErrTokenRevoked       = fmt.Errorf("%w: refresh token revoked", ErrAuthentication)
	ErrTokenFingerprint   = fmt.Errorf("%w: refresh token fingerprint mismatch", ErrAuthentication)

	// Not found. Presenting an unknown user at login is still mapped to 401
	// by the transport to avoid account enumeration.
	ErrUserNotFound  = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrTokenNotFound = fmt.Errorf("%w: refresh token not found", ErrNotFound)

	// Internal invariant violations. Not retried.
	ErrIDCollision = fmt.Errorf("%w: id collision on conditional put", ErrInternal)
)
