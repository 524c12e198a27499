// Package store persists farm snapshots taken on refresh.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/aura-cli/internal/model"
)

// DefaultHistoryLimit caps ListSnapshots when the caller passes limit <= 0.
const DefaultHistoryLimit = 20

// Drivers accepted by New.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrUnknownDriver is returned by New for an unsupported driver name.
var ErrUnknownDriver = eris.New("store: unknown driver")

// Store defines snapshot persistence. Implementations return snapshots
// newest first.
type Store interface {
	SaveSnapshot(ctx context.Context, s *model.Snapshot) error
	SaveSnapshots(ctx context.Context, snaps []model.Snapshot) (int64, error)
	ListSnapshots(ctx context.Context, farmID string, limit int) ([]model.Snapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store for driver and runs its migration. dsn is a file path
// for sqlite and a connection string for postgres; memory ignores it.
func New(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", DriverMemory:
		s = NewMemory()
	case DriverSQLite:
		s, err = NewSQLite(dsn)
	case DriverPostgres:
		s, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Wrapf(ErrUnknownDriver, "driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}
