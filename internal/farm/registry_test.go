package farm

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aura-cli/internal/fixture"
	"github.com/sells-group/aura-cli/internal/landtype"
)

var defaultIDs = []string{"AGRICULTURE_1", "FOREST_1", "URBAN_1", "WATER_1", "BARREN_1"}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(NewSynthesizer(WithRand(NewRand(1))), defaultParcels(t))
	require.NoError(t, err)
	return r
}

func TestNewRegistry_DefaultFixture(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, 5, r.Len())
	assert.Equal(t, defaultIDs, r.IDs())

	summaries := r.Summaries()
	require.Len(t, summaries, 5)
	seen := make(map[string]bool)
	for i, s := range summaries {
		assert.Equal(t, defaultIDs[i], s.ID)
		assert.Greater(t, s.AreaApprox, 0.0)
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
	assert.Equal(t, landtype.Water, summaries[3].LandType)
}

func TestNewRegistry_OrdinalsPerLandType(t *testing.T) {
	parcels := defaultParcels(t)
	extra := parcels[1]
	extra.Name = "Second forest"
	parcels = append(parcels, extra)

	r, err := NewRegistry(NewSynthesizer(), parcels)
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, defaultIDs...), "FOREST_2"), r.IDs())

	_, ordinal, err := r.Parcel("FOREST_2")
	require.NoError(t, err)
	assert.Equal(t, 1, ordinal)
}

func TestNewRegistry_Empty(t *testing.T) {
	r, err := NewRegistry(NewSynthesizer(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.NotNil(t, r.Summaries())
	assert.Empty(t, r.Summaries())
}

func TestNewRegistry_FailsFast(t *testing.T) {
	parcels := defaultParcels(t)
	parcels[2] = fixture.Parcel{Name: "bad", LandType: landtype.LandType("Glacier"), Ring: parcels[2].Ring}

	_, err := NewRegistry(NewSynthesizer(), parcels)
	require.Error(t, err)
	assert.True(t, eris.Is(err, landtype.ErrUnknownLandType))
	assert.Contains(t, err.Error(), "parcel 2")
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := newTestRegistry(t)

	m, err := r.Get("URBAN_1")
	require.NoError(t, err)
	m.Recommendations[0] = "mutated"
	m.AuraHealth = -1

	again, err := r.Get("URBAN_1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Recommendations[0])
	assert.NotEqual(t, -1, again.AuraHealth)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("NONEXISTENT_1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFarmNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "NONEXISTENT_1", nf.ID)
	assert.Equal(t, defaultIDs, nf.Known)
	assert.Contains(t, err.Error(), "NONEXISTENT_1")
	for _, id := range defaultIDs {
		assert.Contains(t, err.Error(), id)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := newTestRegistry(t)

	m, err := r.Get("WATER_1")
	require.NoError(t, err)
	m.AuraHealth = 42
	require.NoError(t, r.Replace(m))

	got, err := r.Get("WATER_1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.AuraHealth)

	m.FarmID = "WATER_9"
	assert.True(t, errors.Is(r.Replace(m), ErrFarmNotFound))
}

func TestRegistry_All(t *testing.T) {
	r := newTestRegistry(t)
	all := r.All()
	require.Len(t, all, 5)
	for i, m := range all {
		assert.Equal(t, defaultIDs[i], m.FarmID)
	}
}
