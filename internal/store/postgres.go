package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/aura-cli/internal/db"
	"github.com/sells-group/aura-cli/internal/landtype"
	"github.com/sells-group/aura-cli/internal/model"
)

// SnapshotTable is the Postgres table holding farm snapshots.
const SnapshotTable = "farm_snapshots"

var snapshotColumns = []string{"id", "farm_id", "land_type", "metrics", "boundary", "created_at"}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"insert_snapshot": `INSERT INTO farm_snapshots (id, farm_id, land_type, metrics, boundary, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"list_snapshots":  `SELECT id, farm_id, land_type, metrics, boundary, created_at FROM farm_snapshots WHERE farm_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS farm_snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	farm_id    TEXT NOT NULL,
	land_type  TEXT NOT NULL,
	metrics    JSONB NOT NULL,
	boundary   BYTEA,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_farm_snapshots_farm_created ON farm_snapshots(farm_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	args, err := snapshotRow(snap)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, preparedStatements["insert_snapshot"], args...); err != nil {
		return eris.Wrapf(err, "postgres: insert snapshot for %s", snap.FarmID)
	}
	return nil
}

// SaveSnapshots bulk-loads snapshots with COPY.
func (s *PostgresStore) SaveSnapshots(ctx context.Context, snaps []model.Snapshot) (int64, error) {
	rows := make([][]any, 0, len(snaps))
	for i := range snaps {
		row, err := snapshotRow(&snaps[i])
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	n, err := db.CopyFrom(ctx, s.pool, SnapshotTable, snapshotColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save snapshots")
	}
	return n, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, farmID string, limit int) ([]model.Snapshot, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["list_snapshots"], farmID, historyLimit(limit))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list snapshots for %s", farmID)
	}
	defer rows.Close()

	snaps := []model.Snapshot{}
	for rows.Next() {
		var (
			snap    model.Snapshot
			lt      string
			metrics []byte
		)
		if err := rows.Scan(&snap.ID, &snap.FarmID, &lt, &metrics, &snap.Boundary, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		if err := json.Unmarshal(metrics, &snap.Metrics); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal metrics for snapshot %s", snap.ID)
		}
		snap.LandType = landtype.LandType(lt)
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}

// snapshotRow is the column tuple for snapshotColumns. Metrics go in as
// JSON bytes for the JSONB column.
func snapshotRow(snap *model.Snapshot) ([]any, error) {
	if snap == nil || snap.FarmID == "" {
		return nil, eris.New("store: snapshot without farm id")
	}
	metrics, err := json.Marshal(snap.Metrics)
	if err != nil {
		return nil, eris.Wrapf(err, "store: marshal metrics for %s", snap.FarmID)
	}
	return []any{snap.ID, snap.FarmID, string(snap.LandType), metrics, snap.Boundary, snap.CreatedAt.UTC()}, nil
}
