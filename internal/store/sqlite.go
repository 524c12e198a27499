package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/aura-cli/internal/landtype"
	"github.com/sells-group/aura-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: empty database path")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// created_at is unix nanoseconds so ordering is numeric.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS farm_snapshots (
	id         TEXT PRIMARY KEY,
	farm_id    TEXT NOT NULL,
	land_type  TEXT NOT NULL,
	metrics    TEXT NOT NULL,
	boundary   BLOB,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_farm_snapshots_farm_created ON farm_snapshots(farm_id, created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteInsertSnapshot = `INSERT INTO farm_snapshots (id, farm_id, land_type, metrics, boundary, created_at) VALUES (?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	args, err := snapshotArgs(snap)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, sqliteInsertSnapshot, args...); err != nil {
		return eris.Wrapf(err, "sqlite: insert snapshot for %s", snap.FarmID)
	}
	return nil
}

// SaveSnapshots inserts all snapshots in one transaction.
func (s *SQLiteStore) SaveSnapshots(ctx context.Context, snaps []model.Snapshot) (int64, error) {
	if len(snaps) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, sqliteInsertSnapshot)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert snapshot")
	}
	defer func() { _ = stmt.Close() }()

	for i := range snaps {
		args, err := snapshotArgs(&snaps[i])
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert snapshot for %s", snaps[i].FarmID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit snapshots")
	}
	return int64(len(snaps)), nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, farmID string, limit int) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farm_id, land_type, metrics, boundary, created_at FROM farm_snapshots
		 WHERE farm_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		farmID, historyLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list snapshots for %s", farmID)
	}
	defer rows.Close() //nolint:errcheck

	snaps := []model.Snapshot{}
	for rows.Next() {
		var (
			snap     model.Snapshot
			lt       string
			metrics  string
			boundary []byte
			created  int64
		)
		if err := rows.Scan(&snap.ID, &snap.FarmID, &lt, &metrics, &boundary, &created); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		if err := json.Unmarshal([]byte(metrics), &snap.Metrics); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal metrics for snapshot %s", snap.ID)
		}
		snap.LandType = landtype.LandType(lt)
		snap.Boundary = boundary
		snap.CreatedAt = time.Unix(0, created).UTC()
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

// snapshotArgs adapts snapshotRow to the SQLite column types.
func snapshotArgs(snap *model.Snapshot) ([]any, error) {
	row, err := snapshotRow(snap)
	if err != nil {
		return nil, err
	}
	row[3] = string(row[3].([]byte))
	row[5] = snap.CreatedAt.UTC().UnixNano()
	return row, nil
}
