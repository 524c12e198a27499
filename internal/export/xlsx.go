// Package export writes farm records to spreadsheet files.
package export

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/aura-cli/internal/model"
)

// SheetName is the worksheet holding one row per farm.
const SheetName = "Farms"

// Header is the first row of the Farms sheet.
var Header = []string{
	"Farm ID", "Name", "Land Type",
	"Centroid Lat", "Centroid Lng", "Area (km²)",
	"North", "South", "East", "West",
	"Aura Health", "Vegetation Index", "Soil Moisture", "Crop Density",
	"Temperature (°C)", "Rainfall (mm)",
	"Recommendations", "Risk Factors", "Last Updated",
}

// WriteXLSX writes farms as a workbook to w.
func WriteXLSX(w io.Writer, farms []model.FarmMetrics) error {
	f, err := build(farms)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}

// SaveXLSX writes farms as a workbook at path.
func SaveXLSX(path string, farms []model.FarmMetrics) error {
	f, err := build(farms)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}

func build(farms []model.FarmMetrics) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}

	for _, m := range farms {
		row := sheet.AddRow()
		row.AddCell().SetString(m.FarmID)
		row.AddCell().SetString(m.Name)
		row.AddCell().SetString(m.LandType.String())
		for _, v := range []float64{
			m.Centroid.Lat, m.Centroid.Lng, m.AreaApprox,
			m.BoundingBox.North, m.BoundingBox.South, m.BoundingBox.East, m.BoundingBox.West,
		} {
			row.AddCell().SetFloat(v)
		}
		row.AddCell().SetInt(m.AuraHealth)
		for _, v := range []float64{
			m.VegetationIndex, m.SoilMoisture, m.CropDensity, m.Temperature, m.Rainfall,
		} {
			row.AddCell().SetFloat(v)
		}
		row.AddCell().SetString(strings.Join(m.Recommendations, "; "))
		row.AddCell().SetString(strings.Join(m.RiskFactors, "; "))
		row.AddCell().SetString(m.LastUpdated.UTC().Format(time.RFC3339))
	}
	return f, nil
}
