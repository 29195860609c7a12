package postgres

import (
	"testing"
	"time"

	"github.com/ogurasousui/agenda-directory/internal/platform/config"
)

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	dbCfg := config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            "localhost",
		Port:            15432,
		User:            "agenda",
		Password:        "p@ss",
		Name:            "agenda",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}

	poolCfg, err := BuildPoolConfig(dbCfg)
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 20 {
		t.Errorf("expected MaxConns 20, got %d", poolCfg.MaxConns)
	}
	if poolCfg.MinConns != 5 {
		t.Errorf("expected MinConns 5, got %d", poolCfg.MinConns)
	}
	if poolCfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("unexpected MaxConnLifetime: %v", poolCfg.MaxConnLifetime)
	}
	if poolCfg.MaxConnIdleTime != 10*time.Minute {
		t.Errorf("unexpected MaxConnIdleTime: %v", poolCfg.MaxConnIdleTime)
	}
	if poolCfg.ConnConfig.Database != "agenda" {
		t.Errorf("expected database agenda, got %s", poolCfg.ConnConfig.Database)
	}
	if poolCfg.ConnConfig.Password != "p@ss" {
		t.Errorf("expected escaped password to round-trip, got %s", poolCfg.ConnConfig.Password)
	}
}

func TestBuildPoolConfig_ApplicationNameAndIdleCap(t *testing.T) {
	t.Parallel()

	poolCfg, err := BuildPoolConfig(config.DatabaseConfig{
		Host:         "localhost",
		Port:         5432,
		User:         "agenda",
		Name:         "agenda",
		SSLMode:      "disable",
		MaxOpenConns: 4,
		MaxIdleConns: 10,
	})
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != "agenda-directory" {
		t.Errorf("expected application_name agenda-directory, got %q", got)
	}
	if poolCfg.MinConns != 4 {
		t.Errorf("expected MinConns capped to 4, got %d", poolCfg.MinConns)
	}
}

func TestBuildPoolConfig_RejectsOtherDriver(t *testing.T) {
	t.Parallel()

	if _, err := BuildPoolConfig(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: "a.db"}); err == nil {
		t.Fatal("expected error for sqlite driver")
	}
}
