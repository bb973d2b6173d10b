package repository

import (
	"context"
	"fmt"
)

// Store drivers accepted by OpenStore.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// StoreOptions selects and locates the submission store.
type StoreOptions struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// OpenStore connects to the configured store and returns it with a close
// function. Connection failures are returned, never deferred to first use.
func OpenStore(ctx context.Context, opts StoreOptions) (SubmissionRepository, func(), error) {
	switch opts.Driver {
	case DriverPostgres:
		pool, err := NewPool(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPgSubmissionRepository(pool), pool.Close, nil
	case DriverSQLite:
		db, err := OpenSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return NewSQLiteSubmissionRepository(db), func() { _ = db.Close() }, nil
	case DriverMemory:
		return NewMemorySubmissionRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}
