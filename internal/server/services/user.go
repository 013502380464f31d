package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/server/auth"
	"github.com/dmitrijs2005/authcore/internal/server/models"
	"github.com/dmitrijs2005/authcore/internal/server/repositories/users"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService is the authentication engine:
//   - Register / Login: create users, verify credentials, mint token pairs
//   - Refresh: rotate refresh tokens and mint new pairs
//   - ChangeUsername / ChangePassword: credential-gated account mutations
//   - Logout: bulk revocation of the user's refresh tokens
type UserService struct {
	users  users.Repository
	ledger *Ledger
	codec  *auth.Codec
	logger logging.Logger
}

func NewUserService(repo users.Repository, ledger *Ledger, codec *auth.Codec, logger logging.Logger) *UserService {
	return &UserService{users: repo, ledger: ledger, codec: codec, logger: logger}
}

// Register creates a new active user and issues its first token pair.
// Username uniqueness is a best-effort pre-check against an eventually
// consistent index; the conditional write guards user_id only.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	if err := validateUsername(username); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.UserID, "username", username)
	return user, pair, nil
}

// Login verifies credentials, stamps the login time and issues a token pair.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, common.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, common.ErrCredentialMismatch
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = now

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.UserID, "username", username)
	return user, pair, nil
}

// Refresh consumes a presented refresh token and issues a new pair. The
// username embedded in the new access token is re-fetched rather than taken
// from the old token, so a username change is reflected.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.ledger.ValidateAndConsume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "tokens refreshed", "user_id", userID)
	return pair, nil
}

// ChangeUsername updates the username after re-verifying the password and
// pre-checking the new name for conflicts.
func (s *UserService) ChangeUsername(ctx context.Context, userID, newUsername, password string) (*models.User, error) {
	if err := validateUsername(newUsername); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrCredentialMismatch
	}

	if existing, err := s.users.GetByUsername(ctx, newUsername); err == nil {
		if existing.UserID != userID {
			return nil, common.ErrUsernameTaken
		}
	} else if !errors.Is(err, common.ErrUserNotFound) {
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateUsername(ctx, userID, newUsername, now); err != nil {
		return nil, err
	}
	user.Username = newUsername
	user.UsernameChangedAt = &now

	s.logger.Info(ctx, "username changed", "user_id", userID)
	return user, nil
}

// ChangePassword replaces the password hash after re-verifying the current
// password. Existing refresh tokens stay valid; callers wanting a global
// sign-out combine this with Logout.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*models.User, error) {
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return nil, common.ErrCredentialMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return user, nil
}

// Logout revokes all refresh tokens for the user. Outstanding access tokens
// remain valid until their own expiry; they are stateless and not checked
// against the ledger.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.ledger.RevokeAllForUser(ctx, userID)
}

// GetUser resolves the bearer's current account state by primary key.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// VerifyAccess statelessly verifies an access token, for use by the
// transport's auth middleware.
func (s *UserService) VerifyAccess(token string) (*auth.AccessClaims, error) {
	return s.codec.VerifyAccess(token)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.codec.IssueAccess(user.UserID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	_, refreshToken, err := s.ledger.IssueRecord(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
