package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/server/auth"
	"github.com/dmitrijs2005/authcore/internal/server/models"
)

// memUsersRepo is an in-memory users.Repository.
type memUsersRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: make(map[string]*models.User)}
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.UserID]; ok {
		return common.ErrIDCollision
	}
	cp := *user
	r.byID[user.UserID] = &cp
	return nil
}

func (r *memUsersRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *memUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (r *memUsersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	user.LastLoginAt = at
	return nil
}

func (r *memUsersRepo) UpdateUsername(ctx context.Context, userID, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	user.Username = username
	user.UsernameChangedAt = &at
	return nil
}

func (r *memUsersRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

type engineFixture struct {
	users   *memUsersRepo
	tokens  *memTokensRepo
	codec   *auth.Codec
	service *UserService
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	usersRepo := newMemUsersRepo()
	tokensRepo := newMemTokensRepo()
	codec := auth.NewCodec([]byte("test-secret"), 15*time.Minute, 7*24*time.Hour)
	logger := testLogger()
	ledger := NewLedger(tokensRepo, codec, logger)
	return &engineFixture{
		users:   usersRepo,
		tokens:  tokensRepo,
		codec:   codec,
		service: NewUserService(usersRepo, ledger, codec, logger),
	}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	registered, pair, err := f.service.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair")
	}
	if !registered.IsActive {
		t.Fatalf("new user must be active")
	}

	loggedIn, pair2, err := f.service.Login(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if loggedIn.UserID != registered.UserID {
		t.Fatalf("user id mismatch: got %q want %q", loggedIn.UserID, registered.UserID)
	}
	if pair2.AccessToken == "" || pair2.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair on login")
	}

	claims, err := f.codec.VerifyAccess(pair2.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if claims.UserID != registered.UserID || claims.Username != "alice" {
		t.Fatalf("unexpected access claims: %+v", claims)
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"username too short", "ab", "pass1234", common.ErrUsernameLength},
		{"username too long", "abcdefghijklmnopqrstu", "pass1234", common.ErrUsernameLength},
		{"username bad charset", "bad name!", "pass1234", common.ErrUsernameCharset},
		{"password too short", "alice", "abc", common.ErrPasswordLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.service.Register(ctx, tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, common.ErrValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, _, err := f.service.Register(ctx, "bob", "pass1234"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, _, err := f.service.Register(ctx, "bob", "otherpass")
	if !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}
}

func TestRegister_TokenIssuanceFailureIsReported(t *testing.T) {
	f := newEngineFixture(t)
	f.tokens.createErr = common.ErrStoreUnavailable

	_, _, err := f.service.Register(context.Background(), "alice", "pass1234")
	if !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("expected store error surfaced, got %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	user, _, err := f.service.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, _, err := f.service.Login(ctx, "nobody", "pass1234"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, _, err := f.service.Login(ctx, "alice", "wrongpass"); !errors.Is(err, common.ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch, got %v", err)
	}

	f.users.byID[user.UserID].IsActive = false
	if _, _, err := f.service.Login(ctx, "alice", "pass1234"); !errors.Is(err, common.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

// Scenario from the token lifecycle: login yields R1, refresh(R1) yields R2
// and burns R1; logout burns R2.
func TestRefreshRotationAndLogout(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	user, pair1, err := f.service.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	pair2, err := f.service.Refresh(ctx, pair1.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if pair2.RefreshToken == pair1.RefreshToken {
		t.Fatalf("rotation must issue a different refresh token")
	}

	// Replay of the consumed token string fails even before the new one is used.
	if _, err := f.service.Refresh(ctx, pair1.RefreshToken); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on replay, got %v", err)
	}

	if err := f.service.Logout(ctx, user.UserID); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, err := f.service.Refresh(ctx, pair2.RefreshToken); !errors.Is(err, common.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestRefresh_UsesCurrentUsername(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	user, pair, err := f.service.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := f.service.ChangeUsername(ctx, user.UserID, "alice_v2", "pass1234"); err != nil {
		t.Fatalf("ChangeUsername error: %v", err)
	}

	pair2, err := f.service.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	claims, err := f.codec.VerifyAccess(pair2.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}
	if claims.Username != "alice_v2" {
		t.Fatalf("access token must carry the current username, got %q", claims.Username)
	}
}

func TestChangeUsername(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	alice, _, err := f.service.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, _, err := f.service.Register(ctx, "bob", "pass1234"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := f.service.ChangeUsername(ctx, alice.UserID, "bob", "pass1234"); !errors.Is(err, common.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	if _, err := f.service.ChangeUsername(ctx, alice.UserID, "alice", "wrongpass"); !errors.Is(err, common.ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch, got %v", err)
	}

	updated, err := f.service.ChangeUsername(ctx, alice.UserID, "alice_new", "pass1234")
	if err != nil {
		t.Fatalf("ChangeUsername error: %v", err)
	}
	if updated.Username != "alice_new" {
		t.Fatalf("username not updated: %q", updated.Username)
	}
	if updated.UsernameChangedAt == nil {
		t.Fatalf("username change timestamp not set")
	}

	if _, _, err := f.service.Login(ctx, "alice_new", "pass1234"); err != nil {
		t.Fatalf("Login with new username error: %v", err)
	}
	if _, _, err := f.service.Login(ctx, "alice", "pass1234"); !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("expected old username gone, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	user, _, err := f.service.Register(ctx, "alice", "pass1234")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := f.service.ChangePassword(ctx, user.UserID, "pass1234", "abc"); !errors.Is(err, common.ErrPasswordLength) {
		t.Fatalf("expected ErrPasswordLength, got %v", err)
	}
	if _, err := f.service.ChangePassword(ctx, user.UserID, "wrongpass", "newpass123"); !errors.Is(err, common.ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch, got %v", err)
	}

	if _, err := f.service.ChangePassword(ctx, user.UserID, "pass1234", "newpass123"); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	if _, _, err := f.service.Login(ctx, "alice", "pass1234"); !errors.Is(err, common.ErrCredentialMismatch) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, _, err := f.service.Login(ctx, "alice", "newpass123"); err != nil {
		t.Fatalf("Login with new password error: %v", err)
	}
}
