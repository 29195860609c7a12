package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/agenda-directory/internal/platform/config"
)

// applicationName は pg_stat_activity に表示される接続元名です。
const applicationName = "agenda-directory"

// BuildPoolConfig はユーザーディレクトリ用の接続プール設定を組み立てます。
// driver が postgres 以外の設定は受け付けません。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg.Driver != "" && cfg.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("postgres: driver %q is not postgres", cfg.Driver)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// 待機接続数は上限を超えないようにそろえます。
	if idle := int32(cfg.MaxIdleConns); idle > 0 {
		poolCfg.MinConns = min(idle, poolCfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	return poolCfg, nil
}

// NewPool はユーザーテーブルへの接続プールを開き、Ping で到達性を確認します。
// 到達できない場合はプールを閉じてエラーを返します。
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool for %s@%s: %w", cfg.Name, cfg.Host, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s@%s: %w", cfg.Name, cfg.Host, err)
	}

	return pool, nil
}
