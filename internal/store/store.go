package store

import (
	"context"
	"errors"
	"fmt"

	"survey-registry/internal/config"
	"survey-registry/internal/models"
)

var (
	// ErrNotFound is returned by Load before any snapshot has been saved.
	ErrNotFound = errors.New("snapshot not found")
	// ErrUnknownDriver is returned by Open for an unsupported storage driver.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// SnapshotStore keeps the latest registry snapshot. Save replaces whatever
// was stored before.
type SnapshotStore interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (SnapshotStore, error) {
	var (
		s   SnapshotStore
		err error
	)
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(cfg.Path), nil
	case config.DriverSQLite:
		s, err = OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		s, err = OpenPostgres(ctx, cfg.PostgresDSN)
	case config.DriverS3:
		s, err = OpenS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
