package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open connects to the database and applies the schema migrations.
func Open(driver, dsn string) (*sql.DB, error) {
	if _, err := placeholders(driver); err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite serializes writers anyway, and ":memory:" is per connection
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	if err := migrate(context.Background(), conn, driver); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("database connection initialized", "driver", driver)
	return conn, nil
}

func placeholders(driver string) (sq.PlaceholderFormat, error) {
	switch driver {
	case DriverSQLite:
		return sq.Question, nil
	case DriverPostgres:
		return sq.Dollar, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
