package fixture

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/aura-cli/internal/landtype"
)

// Shapefile attribute names.
const (
	FieldLandType = "land_type"
	FieldName     = "name"
)

// LoadShapefile reads polygon records from a shapefile. The LAND_TYPE
// attribute is required; NAME is optional. Only the first part of each
// polygon is used as the parcel ring.
func LoadShapefile(path string) ([]Parcel, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	ltIdx, ok := fieldIdx[FieldLandType]
	if !ok {
		return nil, eris.Errorf("fixture: shapefile %s has no %s attribute", path, strings.ToUpper(FieldLandType))
	}
	nameIdx, hasName := fieldIdx[FieldName]

	var parcels []Parcel
	for reader.Next() {
		n, shape := reader.Shape()

		name := "record " + strconv.Itoa(n)
		if hasName {
			if v := attribute(reader, nameIdx); v != "" {
				name = v
			}
		}

		lt, err := landtype.Parse(attribute(reader, ltIdx))
		if err != nil {
			return nil, eris.Wrapf(err, "fixture: shapefile record %d", n)
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			return nil, eris.Errorf("fixture: shapefile record %d (%s) is not a polygon", n, name)
		}

		p, err := NewParcel(name, lt, firstRing(poly))
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}

	zap.L().Debug("fixture: loaded shapefile parcels",
		zap.String("path", path),
		zap.Int("count", len(parcels)),
	)
	return parcels, nil
}

func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// firstRing returns the first part of a shapefile polygon, or nil when the
// polygon is empty or its part offsets are out of range. A nil ring fails
// geo.Validate with ErrInvalidGeometry.
func firstRing(p *shp.Polygon) *geom.LinearRing {
	if p.NumParts == 0 || len(p.Parts) == 0 || len(p.Points) == 0 {
		return nil
	}
	start, end := p.Parts[0], int32(len(p.Points))
	if p.NumParts > 1 && len(p.Parts) > 1 {
		end = p.Parts[1]
	}
	if start < 0 || end > int32(len(p.Points)) || start >= end {
		return nil
	}

	flat := make([]float64, 0, 2*(end-start))
	for _, pt := range p.Points[start:end] {
		flat = append(flat, pt.X, pt.Y)
	}
	return geom.NewLinearRingFlat(geom.XY, flat)
}
