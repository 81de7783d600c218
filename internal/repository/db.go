package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/tbcparser/internal/common"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB is a dialect-aware handle shared by the repositories.
type DB struct {
	drv     *entsql.Driver
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// Open connects to Postgres (through a pgx pool) or to an embedded SQLite file.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", common.ErrInvalidInput, cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "tbcparser"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	db := &DB{
		drv:     entsql.OpenDB(dialect.Postgres, stdlib.OpenDBFromPool(pool)),
		pool:    pool,
		dialect: dialect.Postgres,
		logger:  logger,
	}
	logger.Info("successfully connected to database", "driver", DriverPostgres)
	return db, nil
}

func openSQLite(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	sqldb, err := sql.Open("sqlite", sqliteDSN(cfg.DSN))
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	// a single connection keeps pragmas in effect and avoids SQLITE_BUSY between writers
	sqldb.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := sqldb.ExecContext(ctx, pragma); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabase, pragma, err)
		}
	}

	db := &DB{
		drv:     entsql.OpenDB(dialect.SQLite, sqldb),
		dialect: dialect.SQLite,
		logger:  logger,
	}
	logger.Info("successfully connected to database", "driver", DriverSQLite)
	return db, nil
}

// sqliteDSN pins the driver's time encoding so stored date_time values sort as text.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

// Dialect returns the ent dialect name of the connection.
func (db *DB) Dialect() string { return db.dialect }

// Close closes the database connections gracefully
func (db *DB) Close() {
	if db == nil {
		return
	}
	db.logger.Info("closing database connections")
	if err := db.drv.Close(); err != nil {
		db.logger.Error("failed to close database handle", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.drv.DB().PingContext(ctx); err != nil {
		db.logger.Error("database ping failed", "error", err)
		return fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}
	db.logger.Debug("database ping successful")
	return nil
}

// Migrate creates the tables used by the repositories when they are missing.
func (db *DB) Migrate(ctx context.Context) error {
	statements := sqliteSchema
	if db.dialect == dialect.Postgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if err := db.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			db.logger.Error("migration failed", "error", err)
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	db.logger.Info("database schema ready", "dialect", db.dialect)
	return nil
}

func (db *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(db.dialect)
}

func (db *DB) query(ctx context.Context, q entsql.Querier) (*entsql.Rows, error) {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := db.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return rows, nil
}

func (db *DB) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	if err := db.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (db *DB) insertReturningID(ctx context.Context, ib *entsql.InsertBuilder) (int64, error) {
	rows, err := db.query(ctx, ib.Returning("id"))
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	id, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("%w: scan id: %v", common.ErrDatabase, err)
	}
	return id, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
