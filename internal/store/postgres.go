package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	createTable: `CREATE TABLE IF NOT EXISTS registry_state (
		bucket TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`,
	upsert:    `INSERT INTO registry_state(bucket, payload) VALUES($1, $2) ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload`,
	selectAll: `SELECT bucket, payload FROM registry_state`,
}

// PostgresStore keeps the snapshot in a PostgreSQL table.
type PostgresStore struct {
	*bucketStore
}

// OpenPostgres connects using a lib/pq connection string, e.g.
// "host=localhost port=5432 user=registry dbname=registry sslmode=disable".
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	bs, err := newBucketStore(ctx, db, postgresDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{bucketStore: bs}, nil
}
