package store

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/landtype"
	"github.com/sells-group/aura-cli/internal/model"
)

var baseTime = time.Date(2026, time.March, 1, 6, 0, 0, 0, time.UTC)

func testSnapshot(id, farmID string, at time.Time) model.Snapshot {
	return model.Snapshot{
		ID:       id,
		FarmID:   farmID,
		LandType: landtype.Forest,
		Metrics: model.FarmMetrics{
			FarmID:          farmID,
			Name:            "Satpura Forest Tract",
			LandType:        landtype.Forest,
			Centroid:        geo.LatLng{Lat: 20, Lng: 76},
			AuraHealth:      81,
			VegetationIndex: 0.842,
			Recommendations: []string{"Monitor for illegal logging activity"},
			RiskFactors:     []string{},
			LastUpdated:     at,
		},
		Boundary:  []byte{0x01, 0x03, 0x00, 0x00, 0x20},
		CreatedAt: at,
	}
}

// storeContract runs the behavior every Store implementation shares.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	for i, id := range []string{"s1", "s2", "s3"} {
		snap := testSnapshot(id, "FOREST_1", baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveSnapshot(ctx, &snap))
	}
	other := testSnapshot("o1", "URBAN_1", baseTime)
	require.NoError(t, s.SaveSnapshot(ctx, &other))

	got, err := s.ListSnapshots(ctx, "FOREST_1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s3", got[0].ID)
	assert.Equal(t, "s2", got[1].ID)
	assert.Equal(t, landtype.Forest, got[0].LandType)
	assert.Equal(t, 81, got[0].Metrics.AuraHealth)
	assert.Equal(t, "Satpura Forest Tract", got[0].Metrics.Name)
	assert.Equal(t, []byte{0x01, 0x03, 0x00, 0x00, 0x20}, got[0].Boundary)
	assert.True(t, baseTime.Add(2*time.Minute).Equal(got[0].CreatedAt))

	all, err := s.ListSnapshots(ctx, "FOREST_1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.ListSnapshots(ctx, "WATER_1", 5)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err := s.SaveSnapshots(ctx, []model.Snapshot{
		testSnapshot("b1", "WATER_1", baseTime),
		testSnapshot("b2", "WATER_1", baseTime.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	water, err := s.ListSnapshots(ctx, "WATER_1", 5)
	require.NoError(t, err)
	require.Len(t, water, 2)
	assert.Equal(t, "b2", water[0].ID)

	assert.Error(t, s.SaveSnapshot(ctx, &model.Snapshot{ID: "x"}))
}

func TestNew_Memory(t *testing.T) {
	s, err := New(context.Background(), "", "")
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	assert.IsType(t, &MemoryStore{}, s)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "mongo", "")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownDriver))
}

func TestNew_SQLiteEmptyPath(t *testing.T) {
	_, err := New(context.Background(), DriverSQLite, "")
	assert.Error(t, err)
}

func TestHistoryLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, historyLimit(0))
	assert.Equal(t, DefaultHistoryLimit, historyLimit(-3))
	assert.Equal(t, 7, historyLimit(7))
}
