package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/agenda-directory/internal/adapters/grpc/handler"
	"github.com/ogurasousui/agenda-directory/internal/adapters/repository/postgres"
	"github.com/ogurasousui/agenda-directory/internal/adapters/repository/sqlite"
	"github.com/ogurasousui/agenda-directory/internal/core/user"
	"github.com/ogurasousui/agenda-directory/internal/platform/auth"
	"github.com/ogurasousui/agenda-directory/internal/platform/config"
	pg "github.com/ogurasousui/agenda-directory/internal/platform/db/postgres"
	sqlitedb "github.com/ogurasousui/agenda-directory/internal/platform/db/sqlite"
	"github.com/ogurasousui/agenda-directory/internal/platform/logging"
	"github.com/ogurasousui/agenda-directory/internal/platform/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(os.Stdout, cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	repo, tx, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := user.NewService(repo, user.NewBcryptHasher(cfg.Auth.BcryptCost), nil, tx, user.WithLogger(logger))
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	grpcServer := server.New(cfg.Server.ListenAddr, handler.NewUserDirectoryHandler(svc, issuer), issuer, svc, logger)

	logger.Info("gRPC server listening",
		slog.String("addr", cfg.Server.ListenAddr),
		slog.String("driver", cfg.Database.Driver),
	)

	return grpcServer.Run(ctx)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (user.Repository, user.TransactionManager, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlitedb.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqlitedb.Migrate(db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewUserRepository(db), sqlitedb.NewTransactionManager(db), func() { db.Close() }, nil
	default:
		pool, err := pg.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("initialize database pool: %w", err)
		}
		return postgres.NewUserRepository(pool), pg.NewTransactionManager(pool), pool.Close, nil
	}
}
