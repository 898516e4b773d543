package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"survey-registry/internal/models"
)

const (
	bucketMeta   = "meta"
	bucketPeople = "people"
	bucketReport = "report"
)

type snapshotMeta struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// dialect holds the statements that differ between SQL engines
type dialect struct {
	createTable string
	upsert      string
	selectAll   string
}

// bucketStore persists a snapshot as JSON payloads in a state(bucket, payload)
// table, one row per bucket, replaced in a single transaction.
type bucketStore struct {
	db      *sql.DB
	dialect dialect
}

func newBucketStore(ctx context.Context, db *sql.DB, d dialect) (*bucketStore, error) {
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &bucketStore{db: db, dialect: d}, nil
}

func (s *bucketStore) Save(ctx context.Context, snap *models.Snapshot) (retErr error) {
	payloads := make(map[string][]byte, 3)
	var err error
	if payloads[bucketMeta], err = json.Marshal(snapshotMeta{RunID: snap.RunID, GeneratedAt: snap.GeneratedAt}); err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if payloads[bucketPeople], err = json.Marshal(snap.People); err != nil {
		return fmt.Errorf("encode people: %w", err)
	}
	if payloads[bucketReport], err = json.Marshal(snap.Report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range []string{bucketMeta, bucketPeople, bucketReport} {
		if _, err := tx.ExecContext(ctx, s.dialect.upsert, bucket, payloads[bucket]); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

func (s *bucketStore) Load(ctx context.Context) (*models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.selectAll)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap models.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case bucketMeta:
			var meta snapshotMeta
			if err := json.Unmarshal(payload, &meta); err != nil {
				return nil, fmt.Errorf("decode meta: %w", err)
			}
			snap.RunID, snap.GeneratedAt = meta.RunID, meta.GeneratedAt
			found = true
		case bucketPeople:
			if err := json.Unmarshal(payload, &snap.People); err != nil {
				return nil, fmt.Errorf("decode people: %w", err)
			}
		case bucketReport:
			if err := json.Unmarshal(payload, &snap.Report); err != nil {
				return nil, fmt.Errorf("decode report: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (s *bucketStore) Close() error {
	return s.db.Close()
}
