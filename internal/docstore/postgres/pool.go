package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/docdeck/internal/docstore"
	"github.com/koustreak/docdeck/internal/errs"
)

const (
	defaultMaxConns = 10
	defaultMinConns = 0
)

// buildPoolConfig parses the connection string and applies pool settings
// with defaults. The result is the template every per-database pool is
// copied from.
func buildPoolConfig(cfg *docstore.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", err)
	}

	poolCfg.MaxConns = withDefault(cfg.MaxConns, defaultMaxConns)
	poolCfg.MinConns = withDefault(cfg.MinConns, defaultMinConns)
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	return poolCfg, nil
}

// withDefault returns val if non-zero, otherwise returns def
func withDefault(val, def int32) int32 {
	if val == 0 {
		return def
	}
	return val
}
