package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/ogurasousui/agenda-directory/internal/platform/config"
	sqlitedb "github.com/ogurasousui/agenda-directory/internal/platform/db/sqlite"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing PostgreSQL migration files")
	)
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(effectiveConfigPath(*configPath))
	if err != nil {
		fatal("failed to load config", err)
	}

	m, err := newMigrator(cfg.Database, *migrationsDir)
	if err != nil {
		fatal("failed to create migrator", err)
	}
	defer m.Close()

	if err := runMigration(m, action); err != nil {
		fatal(fmt.Sprintf("migration %s failed", action), err)
	}

	slog.Info("migration completed", slog.String("action", action), slog.String("driver", cfg.Database.Driver))
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// newMigrator は PostgreSQL ではファイルのマイグレーションを、SQLite では埋め込みのマイグレーションを使います。
func newMigrator(cfg config.DatabaseConfig, dir string) (*migrate.Migrate, error) {
	if cfg.Driver == config.DriverSQLite {
		db, err := sqlitedb.Open(context.Background(), cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		m, err := sqlitedb.NewMigrator(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return m, nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

func runMigration(m *migrate.Migrate, action string) error {
	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				slog.Info("no migration applied")
				return nil
			}
			return err
		}
		slog.Info("current migration", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
