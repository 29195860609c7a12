//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	repo "github.com/ogurasousui/agenda-directory/internal/adapters/repository/postgres"
	"github.com/ogurasousui/agenda-directory/internal/core/user"
	"github.com/ogurasousui/agenda-directory/internal/platform/config"
	pg "github.com/ogurasousui/agenda-directory/internal/platform/db/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const migrationsDir = "../assets/migrations"

func TestDirectoryIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	require.NoError(t, err, "load config")
	require.NoError(t, resetMigrations(cfg.Database.DSN(), migrationsDir), "migrate database")

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	require.NoError(t, err, "create pool")
	t.Cleanup(pool.Close)

	userRepo := repo.NewUserRepository(pool)
	svc := user.NewService(userRepo, user.NewBcryptHasher(bcrypt.MinCost), stubClock{now: time.Now().UTC()}, pg.NewTransactionManager(pool))

	created, err := svc.Create(ctx, user.CreateUserInput{FirstName: "Ana", LastName: "Diaz", UserName: "adiaz", Password: "secret"})
	require.NoError(t, err)

	found, ok, err := svc.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, found)

	got, ok, err := svc.Authenticate(ctx, user.Credentials{UserName: "adiaz", Password: "secret"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, got.ID)

	first := "Ann"
	require.NoError(t, svc.Update(ctx, user.UpdateUserInput{ID: created.ID, FirstName: &first}))

	admin, err := svc.Create(ctx, user.CreateUserInput{FirstName: "Admin", UserName: "root", Password: "root"})
	require.NoError(t, err)

	removal, err := svc.Remove(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RemovalArchived, removal)

	removal, err = svc.Remove(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RemovalDeleted, removal)

	_, err = userRepo.FindByID(ctx, created.ID)
	assert.True(t, errors.Is(err, user.ErrUserNotFound), "expected ErrUserNotFound, got %v", err)

	exists, err := svc.Exists(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDirectoryIntegration_ConcurrentCreate(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	require.NoError(t, err, "load config")
	require.NoError(t, resetMigrations(cfg.Database.DSN(), migrationsDir), "migrate database")

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	require.NoError(t, err, "create pool")
	t.Cleanup(pool.Close)

	svc := user.NewService(repo.NewUserRepository(pool), user.NewBcryptHasher(bcrypt.MinCost), nil, pg.NewTransactionManager(pool))

	const n = 8
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := svc.Create(ctx, user.CreateUserInput{FirstName: "Con", UserName: "concurrent", Password: "x"})
			if assert.NoError(t, err) {
				ids[i] = d.ID
			}
		}()
	}
	wg.Wait()

	seen := make(map[int64]struct{}, n)
	for _, id := range ids {
		require.NotZero(t, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func resetMigrations(url, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), url)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
