package farm

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/aura-cli/internal/fixture"
	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/landtype"
)

var fixedNow = time.Date(2026, 1, 15, 6, 30, 0, 0, time.UTC)

// seq returns a Rand that yields vals in order, cycling.
func seq(vals ...float64) Rand {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func defaultParcels(t *testing.T) []fixture.Parcel {
	t.Helper()
	parcels, err := fixture.Default()
	require.NoError(t, err)
	return parcels
}

func TestSynthesize_ExactValues(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer(
		WithRand(seq(0, 0.5, 0.25, 0, 0.5, 0.5, 0.9)),
		WithClock(func() time.Time { return fixedNow }),
	)

	m, err := s.Synthesize(parcels[0], 0)
	require.NoError(t, err)

	assert.Equal(t, "AGRICULTURE_1", m.FarmID)
	assert.Equal(t, landtype.Agriculture, m.LandType)
	assert.Equal(t, "Gangetic Plain Fields", m.Name)
	assert.Equal(t, geo.LatLng{Lat: 25.5, Lng: 80}, m.Centroid)
	assert.Equal(t, geo.BoundingBox{North: 28, South: 23, East: 88, West: 72}, m.BoundingBox)
	assert.Greater(t, m.AreaApprox, 0.0)

	assert.Equal(t, 60, m.AuraHealth)
	assert.InDelta(t, 0.7, m.VegetationIndex, 1e-9)
	assert.InDelta(t, 0.4, m.SoilMoisture, 1e-9)
	assert.InDelta(t, 0.6, m.CropDensity, 1e-9)
	assert.InDelta(t, 32.5, m.Temperature, 1e-9)
	assert.InDelta(t, 150.0, m.Rainfall, 1e-9)

	profile, err := landtype.ProfileFor(landtype.Agriculture)
	require.NoError(t, err)
	assert.Equal(t, profile.Recommendations, m.Recommendations)
	// Health 60 is under the pest cutoff; 0.9 misses the water-stress draw.
	assert.Equal(t, []string{"Pest infestation risk detected"}, m.RiskFactors)
	assert.Equal(t, fixedNow, m.LastUpdated)
}

func TestSynthesize_ProbabilityRisk(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer(WithRand(seq(0.9, 0, 0, 0, 0, 0, 0.1)))

	m, err := s.Synthesize(parcels[1], 0)
	require.NoError(t, err)

	assert.Equal(t, "FOREST_1", m.FarmID)
	assert.Equal(t, 97, m.AuraHealth)
	assert.Equal(t, []string{"Fire danger elevated in dry season"}, m.RiskFactors)
}

func TestSynthesize_NoRisks(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer(WithRand(seq(0.99, 0, 0, 0, 0, 0, 0.99)))

	m, err := s.Synthesize(parcels[0], 0)
	require.NoError(t, err)
	assert.NotNil(t, m.RiskFactors)
	assert.Empty(t, m.RiskFactors)
}

func TestSynthesize_RoundsRatios(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer(WithRand(seq(0.123456789)))

	m, err := s.Synthesize(parcels[0], 0)
	require.NoError(t, err)

	for _, v := range []float64{m.VegetationIndex, m.SoilMoisture, m.CropDensity} {
		assert.InDelta(t, v, float64(int(v*1000+0.5))/1000, 1e-12)
	}
}

func TestSynthesize_BoundsHoldForAllTypes(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer(WithRand(NewRand(42)))

	for i := 0; i < 500; i++ {
		for _, p := range parcels {
			m, err := s.Synthesize(p, 0)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, m.AuraHealth, 0)
			assert.LessOrEqual(t, m.AuraHealth, 100)
			for _, v := range []float64{m.VegetationIndex, m.SoilMoisture, m.CropDensity} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
			assert.GreaterOrEqual(t, m.Temperature, 25.0)
			assert.Less(t, m.Temperature, 40.0)
			assert.GreaterOrEqual(t, m.Rainfall, 0.0)
			assert.Less(t, m.Rainfall, 300.0)
		}
	}
}

func TestSynthesize_UpperEdgeDraw(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer(WithRand(seq(0.99999999)))

	for _, p := range parcels {
		m, err := s.Synthesize(p, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, m.AuraHealth, 100)
		assert.Less(t, m.Temperature, 40.0)
		assert.Less(t, m.Rainfall, 300.0)
	}
}

func TestSynthesize_SeededIsReproducible(t *testing.T) {
	parcels := defaultParcels(t)
	clock := WithClock(func() time.Time { return fixedNow })

	a, err := NewSynthesizer(WithRand(NewRand(7)), clock).Synthesize(parcels[2], 0)
	require.NoError(t, err)
	b, err := NewSynthesizer(WithRand(NewRand(7)), clock).Synthesize(parcels[2], 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSynthesize_Errors(t *testing.T) {
	parcels := defaultParcels(t)
	s := NewSynthesizer()

	t.Run("negative index", func(t *testing.T) {
		_, err := s.Synthesize(parcels[0], -1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative parcel index")
	})

	t.Run("unknown land type", func(t *testing.T) {
		p := parcels[0]
		p.LandType = landtype.LandType("Tundra")
		_, err := s.Synthesize(p, 0)
		require.Error(t, err)
		assert.True(t, eris.Is(err, landtype.ErrUnknownLandType))
	})

	t.Run("degenerate ring", func(t *testing.T) {
		p := parcels[0]
		p.Ring = geom.NewLinearRingFlat(geom.XY, []float64{1, 1, 2, 2, 2, 2, 1, 1})
		_, err := s.Synthesize(p, 0)
		require.Error(t, err)
		assert.True(t, eris.Is(err, geo.ErrInvalidGeometry))
	})
}

func TestFarmID(t *testing.T) {
	assert.Equal(t, "WATER_1", FarmID(landtype.Water, 0))
	assert.Equal(t, "URBAN_3", FarmID(landtype.Urban, 2))
}
