package farm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/aura-cli/internal/model"
)

// DefaultLatency is the simulated delay applied to FetchFarmData.
const DefaultLatency = 500 * time.Millisecond

// SnapshotStore records refreshed records. Satisfied by store.Store.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s *model.Snapshot) error
	ListSnapshots(ctx context.Context, farmID string, limit int) ([]model.Snapshot, error)
}

// BatchSnapshotStore saves many snapshots at once.
type BatchSnapshotStore interface {
	SnapshotStore
	SaveSnapshots(ctx context.Context, snaps []model.Snapshot) (int64, error)
}

// Option configures a Service.
type Option func(*Service)

// WithStore records a snapshot on every refresh.
func WithStore(s SnapshotStore) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithLatency overrides the simulated fetch delay. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(svc *Service) {
		svc.latency = d
	}
}

// WithConcurrency bounds RefreshAll parallelism.
func WithConcurrency(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.concurrency = n
		}
	}
}

// Service is the lookup facade over a Registry.
type Service struct {
	registry    *Registry
	synth       *Synthesizer
	store       SnapshotStore
	latency     time.Duration
	concurrency int
}

// NewService wires a service over an already-built registry.
func NewService(registry *Registry, synth *Synthesizer, opts ...Option) *Service {
	s := &Service{
		registry:    registry,
		synth:       synth,
		latency:     DefaultLatency,
		concurrency: 4,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Registry exposes the underlying registry.
func (s *Service) Registry() *Registry { return s.registry }

// ListAvailableFarms returns one summary per farm in generation order.
func (s *Service) ListAvailableFarms() []model.FarmSummary {
	return s.registry.Summaries()
}

// FetchFarmData waits out the simulated latency, then returns the current
// record for id. It never re-synthesizes. Unknown ids yield a *NotFoundError.
func (s *Service) FetchFarmData(ctx context.Context, id string) (model.FarmMetrics, error) {
	if err := s.wait(ctx); err != nil {
		return model.FarmMetrics{}, err
	}

	m, err := s.registry.Get(id)
	if err != nil {
		zap.L().Warn("farm: lookup miss", zap.String("farm_id", id))
		return model.FarmMetrics{}, err
	}
	return m, nil
}

// Refresh re-synthesizes one farm from its parcel and replaces the stored
// record. When a store is configured the snapshot is saved first; if that
// fails the registry keeps the previous record.
func (s *Service) Refresh(ctx context.Context, id string) (model.FarmMetrics, error) {
	m, snap, err := s.resynthesize(id)
	if err != nil {
		return model.FarmMetrics{}, err
	}
	if snap != nil {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			return model.FarmMetrics{}, eris.Wrapf(err, "farm: save snapshot for %s", id)
		}
	}
	if err := s.commit(m); err != nil {
		return model.FarmMetrics{}, err
	}
	return m, nil
}

// RefreshAll refreshes every farm with bounded concurrency and returns the
// new records in generation order. The first failure cancels the rest.
// Records are only replaced once their snapshots are saved. Stores
// implementing BatchSnapshotStore receive all snapshots in one call, and a
// failed batch leaves every record unchanged.
func (s *Service) RefreshAll(ctx context.Context) ([]model.FarmMetrics, error) {
	ids := s.registry.IDs()
	out := make([]model.FarmMetrics, len(ids))
	snaps := make([]*model.Snapshot, len(ids))
	start := time.Now()

	batch, batched := s.store.(BatchSnapshotStore)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var refreshed atomic.Int64
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, snap, err := s.resynthesize(id)
			if err != nil {
				return err
			}
			if !batched {
				if snap != nil {
					if err := s.store.SaveSnapshot(gctx, snap); err != nil {
						return eris.Wrapf(err, "farm: save snapshot for %s", id)
					}
				}
				if err := s.commit(m); err != nil {
					return err
				}
			}
			out[i] = m
			snaps[i] = snap
			refreshed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "farm: refresh all")
	}

	if batched {
		rows := make([]model.Snapshot, 0, len(snaps))
		for _, snap := range snaps {
			if snap != nil {
				rows = append(rows, *snap)
			}
		}
		n, err := batch.SaveSnapshots(ctx, rows)
		if err != nil {
			return nil, eris.Wrap(err, "farm: refresh all: save snapshots")
		}
		zap.L().Debug("farm: saved snapshot batch", zap.Int64("rows", n))

		for _, m := range out {
			if err := s.commit(m); err != nil {
				return nil, eris.Wrap(err, "farm: refresh all")
			}
		}
	}

	zap.L().Info("farm: refreshed all records",
		zap.Int64("refreshed", refreshed.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// resynthesize draws a new record for id without touching the registry. The
// returned snapshot is nil when no store is configured.
func (s *Service) resynthesize(id string) (model.FarmMetrics, *model.Snapshot, error) {
	parcel, ordinal, err := s.registry.Parcel(id)
	if err != nil {
		return model.FarmMetrics{}, nil, err
	}

	m, err := s.synth.Synthesize(parcel, ordinal)
	if err != nil {
		return model.FarmMetrics{}, nil, eris.Wrapf(err, "farm: refresh %s", id)
	}

	if s.store == nil {
		return m, nil, nil
	}
	boundary, err := parcel.Boundary()
	if err != nil {
		return model.FarmMetrics{}, nil, eris.Wrapf(err, "farm: refresh %s", id)
	}
	return m, &model.Snapshot{
		ID:        uuid.NewString(),
		FarmID:    m.FarmID,
		LandType:  m.LandType,
		Metrics:   m.Clone(),
		Boundary:  boundary,
		CreatedAt: m.LastUpdated,
	}, nil
}

// commit replaces the registry record with m.
func (s *Service) commit(m model.FarmMetrics) error {
	if err := s.registry.Replace(m); err != nil {
		return err
	}
	zap.L().Info("farm: refreshed record",
		zap.String("farm_id", m.FarmID),
		zap.Int("aura_health", m.AuraHealth),
		zap.Int("risk_factors", len(m.RiskFactors)),
	)
	return nil
}

// History returns stored snapshots for id, newest first. Without a store it
// returns an empty list.
func (s *Service) History(ctx context.Context, id string, limit int) ([]model.Snapshot, error) {
	if _, err := s.registry.Get(id); err != nil {
		return nil, err
	}
	if s.store == nil {
		return []model.Snapshot{}, nil
	}

	snaps, err := s.store.ListSnapshots(ctx, id, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "farm: history for %s", id)
	}
	return snaps, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "farm: fetch cancelled")
	case <-t.C:
		return nil
	}
}
