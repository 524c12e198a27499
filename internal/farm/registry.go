package farm

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aura-cli/internal/fixture"
	"github.com/sells-group/aura-cli/internal/landtype"
	"github.com/sells-group/aura-cli/internal/model"
)

// Registry holds the generated farm records in fixture order. It is built
// once by the composition root and shared by reference.
type Registry struct {
	mu      sync.RWMutex
	ids     []string
	entries map[string]*entry
}

type entry struct {
	parcel  fixture.Parcel
	ordinal int // position among parcels of the same land type
	metrics model.FarmMetrics
}

// NewRegistry synthesizes one record per parcel. Any geometry or land-type
// error aborts construction.
func NewRegistry(synth *Synthesizer, parcels []fixture.Parcel) (*Registry, error) {
	r := &Registry{
		ids:     make([]string, 0, len(parcels)),
		entries: make(map[string]*entry, len(parcels)),
	}

	ordinals := make(map[landtype.LandType]int, len(landtype.All()))
	for i, p := range parcels {
		ordinal := ordinals[p.LandType]
		m, err := synth.Synthesize(p, ordinal)
		if err != nil {
			return nil, eris.Wrapf(err, "farm: build registry (parcel %d)", i)
		}
		if _, dup := r.entries[m.FarmID]; dup {
			return nil, eris.Errorf("farm: build registry: duplicate farm id %s", m.FarmID)
		}
		ordinals[p.LandType] = ordinal + 1

		r.ids = append(r.ids, m.FarmID)
		r.entries[m.FarmID] = &entry{parcel: p, ordinal: ordinal, metrics: m}

		zap.L().Debug("farm: synthesized record",
			zap.String("farm_id", m.FarmID),
			zap.String("land_type", string(m.LandType)),
			zap.Int("aura_health", m.AuraHealth),
		)
	}

	return r, nil
}

// Len returns the number of farms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// IDs returns the farm ids in generation order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.ids...)
}

// Summaries returns one entry per farm in generation order.
func (r *Registry) Summaries() []model.FarmSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.FarmSummary, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.entries[id].metrics.Summary())
	}
	return out
}

// All returns copies of every record in generation order.
func (r *Registry) All() []model.FarmMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.FarmMetrics, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.entries[id].metrics.Clone())
	}
	return out
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id string) (model.FarmMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return model.FarmMetrics{}, r.notFound(id)
	}
	return e.metrics.Clone(), nil
}

// Parcel returns the source parcel for id and its land-type ordinal.
func (r *Registry) Parcel(id string) (fixture.Parcel, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return fixture.Parcel{}, 0, r.notFound(id)
	}
	return e.parcel, e.ordinal, nil
}

// Replace swaps in a new record for an existing farm.
func (r *Registry) Replace(m model.FarmMetrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[m.FarmID]
	if !ok {
		return r.notFound(m.FarmID)
	}
	e.metrics = m.Clone()
	return nil
}

// notFound must be called with the lock held.
func (r *Registry) notFound(id string) error {
	return &NotFoundError{ID: id, Known: append([]string(nil), r.ids...)}
}
