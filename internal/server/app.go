// Package server wires configuration, storage, the user service and the
// HTTP and gRPC transports into one application and runs it until a
// shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authgate/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/authgate/internal/server/grpc"
	hs "github.com/dmitrijs2005/authgate/internal/server/http"
)

const dbInitTimeout = 30 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	tokens      *auth.TokenService
	userService *services.UserService
}

func NewApp(c *config.Config) (*App, error) {

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Key:      []byte(c.Jwt.Key),
		Issuer:   c.Jwt.Issuer,
		Audience: c.Jwt.Audience,
		Duration: c.Jwt.Duration(),
	})
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(c.PasswordAlgorithm)
	if err != nil {
		return nil, err
	}

	db, rm, err := initStore(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if db == nil {
		logger.Warn(context.Background(), "no database configured, users are kept in memory")
	}

	us := services.NewUserService(db, rm, hasher, tokens, logger.With("module", "user_service"))

	return &App{config: c, logger: logger, db: db, tokens: tokens, userService: us}, nil
}

// initStore opens and migrates Postgres when dsn is set, and falls back to
// the in-memory store otherwise.
func initStore(dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	if dsn == "" {
		return nil, repomanager.NewMemoryRepositoryManager(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbInitTimeout)
	defer cancel()

	db, err := repomanager.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return db, rm, nil
}

// Run serves until ctx is canceled, SIGINT/SIGTERM arrives or a server fails.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hs.NewHTTPServer(app.config.HTTPAddress, app.logger, app.userService, app.tokens).Run(ctx)
	})

	if app.config.GRPCAddress != "" {
		g.Go(func() error {
			return gs.NewGRPCServer(app.config.GRPCAddress, app.logger, app.tokens).Run(ctx)
		})
	}

	err := g.Wait()

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "closing database", "error", cerr)
		}
	}

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}
