// Package fixture loads labelled land parcels: the embedded reference set, or
// a GeoJSON FeatureCollection / polygon shapefile supplied at runtime.
package fixture

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/landtype"
)

// SRID of every parcel geometry (WGS 84 lng/lat).
const SRID = 4326

// Parcel is a named, labelled, closed polygon ring.
type Parcel struct {
	Name     string
	LandType landtype.LandType
	Ring     *geom.LinearRing
}

// NewParcel validates the ring and land type before returning a Parcel.
func NewParcel(name string, lt landtype.LandType, ring *geom.LinearRing) (Parcel, error) {
	if !lt.Valid() {
		return Parcel{}, eris.Wrapf(landtype.ErrUnknownLandType, "fixture: parcel %q has land type %q", name, string(lt))
	}
	if err := geo.Validate(ring); err != nil {
		return Parcel{}, eris.Wrapf(err, "fixture: parcel %q", name)
	}
	return Parcel{Name: name, LandType: lt, Ring: ring}, nil
}

// Polygon wraps the ring as a single-ring polygon with SRID set.
func (p Parcel) Polygon() (*geom.Polygon, error) {
	poly := geom.NewPolygon(geom.XY)
	if err := poly.Push(p.Ring); err != nil {
		return nil, eris.Wrapf(err, "fixture: polygon for %q", p.Name)
	}
	return poly.SetSRID(SRID), nil
}

// Boundary encodes the parcel polygon as little-endian EWKB.
func (p Parcel) Boundary() ([]byte, error) {
	poly, err := p.Polygon()
	if err != nil {
		return nil, err
	}
	data, err := ewkb.Marshal(poly, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: encode boundary for %q", p.Name)
	}
	return data, nil
}

// LoadFile picks a loader by extension: .geojson/.json or .shp.
func LoadFile(path string) ([]Parcel, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSONFile(path)
	case ".shp":
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("fixture: unsupported parcel file %q (want .geojson, .json or .shp)", path)
	}
}
