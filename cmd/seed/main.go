// Command seed registers a set of development users against the credential
// store. It is a local convenience, not a provisioning tool: existing
// usernames are skipped, and the tables are created when missing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/server/auth"
	"github.com/dmitrijs2005/authcore/internal/server/config"
	refreshtokensrepo "github.com/dmitrijs2005/authcore/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/authcore/internal/server/repositories/users"
	"github.com/dmitrijs2005/authcore/internal/server/services"
	"github.com/dmitrijs2005/authcore/internal/server/storage/dynamo"
)

func main() {
	usernames := flag.String("users", "alice,bob,charlie", "comma-separated usernames to create")
	password := flag.String("password", "", "password for the seeded users (prompted when empty)")
	flag.Parse()

	if err := run(context.Background(), *usernames, *password); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, usernames, password string) error {
	if password == "" {
		fmt.Fprint(os.Stderr, "password for seeded users: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	if err := dynamo.EnsureTables(ctx, client, cfg.UsersTable, cfg.RefreshTokensTable); err != nil {
		return err
	}

	codec := auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	ledger := services.NewLedger(refreshtokensrepo.NewDynamoRepository(client, cfg.RefreshTokensTable), codec, logger)
	userService := services.NewUserService(usersrepo.NewDynamoRepository(client, cfg.UsersTable), ledger, codec, logger)

	for _, username := range strings.Split(usernames, ",") {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}

		user, _, err := userService.Register(ctx, username, password)
		if errors.Is(err, common.ErrUsernameTaken) {
			logger.Info(ctx, "user exists, skipping", "username", username)
			continue
		}
		if err != nil {
			return fmt.Errorf("registering %s: %w", username, err)
		}
		logger.Info(ctx, "user created", "username", username, "user_id", user.UserID)
	}

	return nil
}
