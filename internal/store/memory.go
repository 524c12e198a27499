package store

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/aura-cli/internal/model"
)

// MemoryStore keeps snapshots in process. History is lost on exit.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string][]model.Snapshot // farm id -> oldest first
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{snaps: make(map[string][]model.Snapshot)}
}

func (m *MemoryStore) SaveSnapshot(_ context.Context, s *model.Snapshot) error {
	if s == nil || s.FarmID == "" {
		return eris.New("memory: snapshot without farm id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[s.FarmID] = append(m.snaps[s.FarmID], copySnapshot(*s))
	return nil
}

func (m *MemoryStore) SaveSnapshots(ctx context.Context, snaps []model.Snapshot) (int64, error) {
	for i := range snaps {
		if err := m.SaveSnapshot(ctx, &snaps[i]); err != nil {
			return int64(i), err
		}
	}
	return int64(len(snaps)), nil
}

func (m *MemoryStore) ListSnapshots(_ context.Context, farmID string, limit int) ([]model.Snapshot, error) {
	limit = historyLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.snaps[farmID]
	out := make([]model.Snapshot, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copySnapshot(all[i]))
	}
	return out, nil
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func copySnapshot(s model.Snapshot) model.Snapshot {
	s.Metrics = s.Metrics.Clone()
	s.Boundary = append([]byte(nil), s.Boundary...)
	return s
}
