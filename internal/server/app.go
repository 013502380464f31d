// Package server initializes and runs the AuthCore server: it builds the
// DynamoDB-backed repositories, the token codec and ledger, the
// authentication engine and the HTTP boundary, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authcore/internal/logging"
	"github.com/dmitrijs2005/authcore/internal/server/auth"
	"github.com/dmitrijs2005/authcore/internal/server/config"
	"github.com/dmitrijs2005/authcore/internal/server/httpapi"
	refreshtokensrepo "github.com/dmitrijs2005/authcore/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/authcore/internal/server/repositories/users"
	"github.com/dmitrijs2005/authcore/internal/server/services"
	"github.com/dmitrijs2005/authcore/internal/server/storage/dynamo"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	if cfg.BootstrapTables {
		if err := dynamo.EnsureTables(ctx, client, cfg.UsersTable, cfg.RefreshTokensTable); err != nil {
			return nil, fmt.Errorf("bootstrapping tables: %w", err)
		}
	}

	codec := auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	ledger := services.NewLedger(refreshtokensrepo.NewDynamoRepository(client, cfg.RefreshTokensTable), codec, logger)
	userService := services.NewUserService(usersrepo.NewDynamoRepository(client, cfg.UsersTable), ledger, codec, logger)
	server := httpapi.NewServer(userService, logger)

	return &App{config: cfg, logger: logger, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	go func() {
		if err := app.server.Start(app.config.EndpointAddrHTTP); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err)
	}

	app.logger.Info(context.Background(), "server stopped")
}
