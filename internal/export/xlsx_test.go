package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/landtype"
	"github.com/sells-group/aura-cli/internal/model"
)

func testFarms() []model.FarmMetrics {
	return []model.FarmMetrics{
		{
			FarmID:          "WATER_1",
			Name:            "Godavari Delta Wetland",
			LandType:        landtype.Water,
			Centroid:        geo.LatLng{Lat: 15, Lng: 81},
			AreaApprox:      47736.2,
			BoundingBox:     geo.BoundingBox{North: 16, South: 14, East: 82, West: 80},
			AuraHealth:      88,
			VegetationIndex: 0.21,
			SoilMoisture:    0.97,
			CropDensity:     0.05,
			Temperature:     27.4,
			Rainfall:        210.9,
			Recommendations: []string{"Monitor water quality", "Protect riparian buffers"},
			RiskFactors:     []string{},
			LastUpdated:     time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farms.xlsx")
	require.NoError(t, SaveXLSX(path, testFarms()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0]
	require.Len(t, header.Cells, len(Header))
	assert.Equal(t, "Farm ID", header.Cells[0].String())

	row := sheet.Rows[1]
	assert.Equal(t, "WATER_1", row.Cells[0].String())
	assert.Equal(t, "Godavari Delta Wetland", row.Cells[1].String())
	assert.Equal(t, "Water", row.Cells[2].String())

	lat, err := row.Cells[3].Float()
	require.NoError(t, err)
	assert.InDelta(t, 15.0, lat, 1e-9)

	health, err := row.Cells[10].Int()
	require.NoError(t, err)
	assert.Equal(t, 88, health)

	moisture, err := row.Cells[12].Float()
	require.NoError(t, err)
	assert.InDelta(t, 0.97, moisture, 1e-9)

	assert.Equal(t, "Monitor water quality; Protect riparian buffers", row.Cells[16].String())
	assert.Equal(t, "", row.Cells[17].String())
	assert.Equal(t, "2026-01-02T03:04:05Z", row.Cells[18].String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testFarms()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Len(t, f.Sheets[0].Rows, 2)
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets[0].Rows, 1)
}
