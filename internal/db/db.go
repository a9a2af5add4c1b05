package db

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // database/sql driver for the migration connection
)

// NewPool builds the pgx pool the repositories run on.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// openSQL hands out the database/sql handle that golang-migrate drives.
func openSQL(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}
