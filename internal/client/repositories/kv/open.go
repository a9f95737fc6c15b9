package kv

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/societyhub/internal/client/migrations"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/dbx"
	"github.com/dmitrijs2005/societyhub/internal/filex"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Options selects and configures a storage backend.
type Options struct {
	Backend string
	// DSN is a file path for SQLite and a connection string for PostgreSQL.
	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Namespace prefixes Redis keys.
	Namespace string
}

// RunMigrations applies the embedded kv migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	var (
		dir string
		gd  goose.Dialect
	)
	switch dialect {
	case dbx.DialectSQLite:
		dir, gd = "sqlite", goose.DialectSQLite3
	case dbx.DialectPostgres:
		dir, gd = "postgres", goose.DialectPostgres
	default:
		return fmt.Errorf("%w: %s", common.ErrUnsupportedBackend, dialect)
	}

	fsys, err := fs.Sub(migrations.Migrations, dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Open returns the repository described by opts and a function releasing
// its resources.
func Open(ctx context.Context, opts Options) (Repository, func() error, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		if err := filex.EnsureParentDir(opts.DSN); err != nil {
			return nil, nil, err
		}
		db, err := openSQL(ctx, "sqlite", opts.DSN, dbx.DialectSQLite)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteRepository(db), db.Close, nil

	case BackendPostgres:
		db, err := openSQL(ctx, "pgx", opts.DSN, dbx.DialectPostgres)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresRepository(db), db.Close, nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		ns := opts.Namespace
		if ns == "" {
			ns = "societyhub"
		}
		return NewRedisRepository(rdb, ns), rdb.Close, nil

	case BackendMemory:
		return NewMemoryRepository(), func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", common.ErrUnsupportedBackend, opts.Backend)
}

func openSQL(ctx context.Context, driver, dsn string, dialect dbx.Dialect) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
