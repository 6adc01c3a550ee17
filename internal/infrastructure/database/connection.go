package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eslsoft/wordbook/internal/infrastructure/config"
)

// OpenDB opens and pings the SQL database selected by cfg.Storage. The returned
// cleanup closes the pool.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	driver := cfg.Storage.Driver
	var dsn string
	switch driver {
	case config.DriverPostgres:
		dsn = cfg.Storage.DSN
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = sqliteDSN(cfg.Storage.Path)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == config.DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	return db, func() { _ = db.Close() }, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}
